package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/MrEthical07/sharedauth"
	"github.com/MrEthical07/sharedauth/session"
)

type handleContextKey struct{}

type userContextKey struct{}

// HandleFromContext returns the handle stored by [Sessions].
func HandleFromContext(ctx context.Context) (*session.Handle, bool) {
	h, ok := ctx.Value(handleContextKey{}).(*session.Handle)
	return h, ok
}

// UserFromContext returns the user stored by [RequireUser].
func UserFromContext(ctx context.Context) (sharedauth.UserSummary, bool) {
	u, ok := ctx.Value(userContextKey{}).(sharedauth.UserSummary)
	return u, ok
}

// Sessions resolves the session for every request. Resolution never fails:
// a missing, forged or expired cookie yields an anonymous handle.
func Sessions(svc *sharedauth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if svc == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			ctx := sharedauth.WithClientIP(r.Context(), clientIP(r))
			ctx = sharedauth.WithUserAgent(ctx, r.UserAgent())

			h := svc.Sessions().Resolve(ctx, r)
			ctx = context.WithValue(ctx, handleContextKey{}, h)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser answers 401 unless [Sessions] bound an authenticated user.
func RequireUser(svc *sharedauth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h, ok := HandleFromContext(r.Context())
			if !ok || svc == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			user, ok := svc.CurrentUser(h)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
