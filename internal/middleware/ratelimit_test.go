package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BuzzLyutic/todo-api/internal/auth"
	"github.com/BuzzLyutic/todo-api/internal/model"
)

func requestAs(userID int64) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	identity := auth.Identity{UserID: userID, Role: model.RoleUser}
	return req.WithContext(context.WithValue(req.Context(), identityKey, identity))
}

func TestRateLimiter_ExhaustsPerUser(t *testing.T) {
	rl := NewRateLimiter(1, 3) // почти нулевой refill, burst 3
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestAs(1))
		assert.Equal(t, http.StatusOK, w.Code, "request %d within burst", i)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs(1))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Другой пользователь лимитируется отдельно
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs(2))
	assert.Equal(t, http.StatusOK, w.Code)
}
