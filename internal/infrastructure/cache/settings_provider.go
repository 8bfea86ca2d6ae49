package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/posgateway/internal/domain/pos"
	"go.uber.org/zap"
)

// SettingsProvider layers stored settings over configured defaults and
// keeps the result for ttl
type SettingsProvider struct {
	repo     pos.SettingsRepository
	defaults pos.Settings
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.RWMutex
	cached    pos.Settings
	expiresAt time.Time
	loaded    bool
}

// NewSettingsProvider creates a provider. A zero ttl reloads on every call.
func NewSettingsProvider(repo pos.SettingsRepository, defaults pos.Settings, ttl time.Duration, logger *zap.Logger) *SettingsProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsProvider{
		repo:     repo,
		defaults: defaults,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Settings returns the effective settings. When the store is unreachable the
// last good value is served; without one the error is returned.
func (p *SettingsProvider) Settings(ctx context.Context) (pos.Settings, error) {
	p.mu.RLock()
	if p.loaded && p.now().Before(p.expiresAt) {
		s := p.cached
		p.mu.RUnlock()
		return s, nil
	}
	p.mu.RUnlock()

	values, err := p.repo.FindByPrefix(ctx, pos.SettingsPrefix)
	if err != nil {
		p.mu.RLock()
		defer p.mu.RUnlock()
		if p.loaded {
			p.logger.Warn("Settings store unavailable, serving cached settings", zap.Error(err))
			return p.cached, nil
		}
		return pos.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	settings, errs := p.defaults.Override(values)
	for _, e := range errs {
		p.logger.Warn("Ignoring invalid setting", zap.Error(e))
	}

	p.mu.Lock()
	p.cached = settings
	p.expiresAt = p.now().Add(p.ttl)
	p.loaded = true
	p.mu.Unlock()
	return settings, nil
}
