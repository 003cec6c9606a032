package service

import (
	"context"
	"errors"

	"github.com/arolux/auth-service/internal/auth/domain"
	"github.com/arolux/auth-service/internal/auth/store"
	"github.com/arolux/auth-service/pkg/slogx"
)

// ConfigService reads the singleton tuning row. A missing row degrades to a
// zero-valued Configuration: every interval is zero (no cooldown) and every
// expiry is zero, which makes freshly issued tokens born expired. That is
// deliberate, a wiped configuration disables the flows rather than granting
// unbounded lifetimes.
type ConfigService struct {
	Store store.Store
}

func (s *ConfigService) Get(ctx context.Context) (domain.Configuration, error) {
	cfg, err := s.Store.Configurations().GetConfiguration(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Warn("configuration row missing, using zero values")
			return domain.Configuration{}, nil
		}
		return domain.Configuration{}, err
	}
	return cfg, nil
}
