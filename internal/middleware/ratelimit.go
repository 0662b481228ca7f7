package middleware

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/BuzzLyutic/todo-api/pkg/respond"
)

// RateLimiter — ведро токенов на пользователя. Карта разделяется
// между запросами, поэтому под мьютексом.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[int64]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewRateLimiter: perMin запросов в минуту на пользователя.
func NewRateLimiter(perMin, burst int) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[int64]*rate.Limiter),
		limit:   rate.Limit(float64(perMin) / 60.0),
		burst:   burst,
	}
}

func (rl *RateLimiter) limiter(userID int64) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.buckets[userID]
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
		rl.buckets[userID] = l
	}
	return l
}

// Handler ставится после Authenticator: лимитируем по identity.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if ok && !rl.limiter(identity.UserID).Allow() {
			respond.Error(w, r, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
