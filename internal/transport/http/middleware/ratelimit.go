package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"hrms/internal/transport/http/api"
)

// RateLimit applies a per-IP request limit backed by an in-process store.
// A multi-replica deployment needs a shared limiter in front instead.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	instance := limiter.New(memory.NewStore(), limiter.Rate{
		Period: time.Minute,
		Limit:  int64(perMinute),
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			lctx, err := instance.Get(r.Context(), ip)
			if err != nil {
				slog.Error("rate limit check failed", "ip", ip, "err", err)
				api.Internal(w, r)
				return
			}
			if lctx.Reached {
				api.Fail(w, r, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
