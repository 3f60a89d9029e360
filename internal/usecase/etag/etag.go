// Package etag derives entity tags for rendered documents and answers
// conditional requests against them.
package etag

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"io"
	"strconv"
	"strings"
)

func FromData(data []byte) (string, error) {
	h := sha1.New()
	if _, err := io.Copy(h, bytes.NewReader(data)); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}

// Header renders tag as a strong ETag header value.
func Header(tag string) string {
	return strconv.Quote(tag)
}

// Matches reports whether an If-None-Match header names tag. Weak validators
// compare equal to strong ones.
func Matches(ifNoneMatch, tag string) bool {
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		candidate = strings.TrimPrefix(candidate, "W/")
		if v, err := strconv.Unquote(candidate); err == nil && v == tag {
			return true
		}
	}
	return false
}
