package auth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Blacklist — отозванные токены. Живет в памяти процесса и
// сбрасывается при рестарте; запись хранится до истечения самого токена.
type Blacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time // token -> expiresAt

	logger *zap.Logger
	wg     sync.WaitGroup
	stop   chan struct{}
}

func NewBlacklist(logger *zap.Logger) *Blacklist {
	return &Blacklist{
		tokens: make(map[string]time.Time),
		logger: logger,
		stop:   make(chan struct{}),
	}
}

func (b *Blacklist) Add(token string, expiresAt time.Time) {
	b.mu.Lock()
	b.tokens[token] = expiresAt
	b.mu.Unlock()
}

func (b *Blacklist) Contains(token string) bool {
	b.mu.RLock()
	exp, ok := b.tokens[token]
	b.mu.RUnlock()
	// Просроченная запись бесполезна - токен и так невалиден
	return ok && time.Now().Before(exp)
}

// Start запускает фоновую чистку истекших записей.
func (b *Blacklist) Start(ctx context.Context) {
	b.wg.Add(1)
	go b.janitor(ctx)
}

func (b *Blacklist) Stop() {
	close(b.stop)
	b.wg.Wait()
}

func (b *Blacklist) janitor(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := b.purge(time.Now()); n > 0 {
				b.logger.Info("Purged expired blacklist entries", zap.Int("count", n))
			}
		}
	}
}

func (b *Blacklist) purge(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	purged := 0
	for token, exp := range b.tokens {
		if now.After(exp) {
			delete(b.tokens, token)
			purged++
		}
	}
	return purged
}
