package auth

import (
	"context"
	"net/http"
)

const (
	MethodBasic = "basic"
	MethodNone  = "none"
)

type contextKey struct{}

// AuthContext is who made the request, as settled by the provider.
type AuthContext struct {
	AuthMethod string
	UserName   string
}

func NewContext(ctx context.Context, a *AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

func FromContext(ctx context.Context) (*AuthContext, bool) {
	a, ok := ctx.Value(contextKey{}).(*AuthContext)
	return a, ok
}

// UserFrom names the caller for logs; anonymous callers get the auth method.
func UserFrom(ctx context.Context) string {
	a, ok := FromContext(ctx)
	switch {
	case !ok:
		return MethodNone
	case a.UserName != "":
		return a.UserName
	default:
		return a.AuthMethod
	}
}

// AuthProvider guards the API.
type AuthProvider interface {
	Middleware() func(http.Handler) http.Handler
}
