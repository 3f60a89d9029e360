// Package logger logs one line per HTTP request with a colored status code.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Raimguhinov/sleep-monster/pkg/logger"
)

func New(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.Component("middleware/logger")

		log.Info("logger middleware enabled")

		fn := func(w http.ResponseWriter, r *http.Request) {
			entry := log.With(
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			t1 := time.Now()
			defer func() {
				scheme := "http"
				if r.TLS != nil {
					scheme = "https"
				}

				code := ww.Status()
				if code == 0 {
					code = http.StatusOK
				}

				entry.Log(context.Background(), levelFor(code),
					fmt.Sprintf("%s %s://%s%s - %s", r.Method, scheme, r.Host, r.RequestURI, statusColor(code).Sprintf("%03d", code)),
					slog.Int("bytes", ww.BytesWritten()),
					slog.String("duration", time.Since(t1).String()),
					slog.String("remote", r.RemoteAddr),
				)
			}()

			next.ServeHTTP(ww, r)
		}

		return http.HandlerFunc(fn)
	}
}

func statusColor(code int) *color.Color {
	switch {
	case code < 200:
		return color.New(color.FgBlue)
	case code < 300:
		return color.New(color.FgGreen)
	case code < 400:
		return color.New(color.FgCyan)
	case code < 500:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

// levelFor raises server errors above the request noise.
func levelFor(code int) slog.Level {
	switch {
	case code >= 500:
		return slog.LevelError
	case code >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
