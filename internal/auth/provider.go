package auth

import "net/http"

// New picks basic auth when credentials are configured and lets every request
// through otherwise.
func New(realm, username, password string) (AuthProvider, error) {
	if username == "" && password == "" {
		return anonymous{}, nil
	}
	return NewBasicAuth(realm, username, password)
}

type anonymous struct{}

func (anonymous) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := NewContext(r.Context(), &AuthContext{AuthMethod: MethodNone})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
