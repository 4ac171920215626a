package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aiudex/aiudexd/internal/domain"
	"github.com/aiudex/aiudexd/internal/domain/dossier"
	"github.com/aiudex/aiudexd/internal/port/cache"
	"github.com/aiudex/aiudexd/internal/port/database"
)

const officeCacheKey = "office.config"

// OfficeService serves the lawyer/office identity record. Reads on the
// generation path go through an L1 cache; a missing row yields an empty
// identity rather than an error, since generation must not fail on an
// unconfigured office.
type OfficeService struct {
	store    database.Store
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewOfficeService creates an OfficeService. cache may be nil.
func NewOfficeService(store database.Store, c cache.Cache, ttl time.Duration) *OfficeService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OfficeService{store: store, cache: c, cacheTTL: ttl}
}

// Get returns the office identity, consulting the cache first.
func (s *OfficeService) Get(ctx context.Context) (*dossier.Office, error) {
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, officeCacheKey); err == nil && ok {
			var o dossier.Office
			if err := json.Unmarshal(data, &o); err == nil {
				return &o, nil
			}
			slog.Warn("invalid cached office config, falling through", "error", err)
		}
	}

	o, err := s.store.GetOffice(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &dossier.Office{}, nil
		}
		return nil, fmt.Errorf("get office config: %w", err)
	}

	s.cachePut(ctx, o)
	return o, nil
}

// Save persists the office identity and refreshes the cache.
func (s *OfficeService) Save(ctx context.Context, o *dossier.Office) error {
	if err := s.store.SaveOffice(ctx, o); err != nil {
		return fmt.Errorf("save office config: %w", err)
	}
	s.cachePut(ctx, o)
	return nil
}

func (s *OfficeService) cachePut(ctx context.Context, o *dossier.Office) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(o)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, officeCacheKey, data, s.cacheTTL); err != nil {
		slog.Warn("office config cache set failed", "error", err)
	}
}
