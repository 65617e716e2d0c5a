package programs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"festbook/internal/festapi"
	"festbook/internal/shared/constants"
	"festbook/pkg/cache"
)

var ErrProgramNotFound = errors.New("program not found")

// Source is the upstream that owns program details
type Source interface {
	GetProgram(ctx context.Context, programID int64) (*festapi.Program, error)
}

type Service interface {
	GetProgram(ctx context.Context, programID int64) (*festapi.Program, error)
	Invalidate(ctx context.Context, programID int64) error
}

type service struct {
	source Source
	cache  cache.Service
	ttl    time.Duration
}

// NewService returns a cache-aside program lookup. A nil cache disables caching.
func NewService(source Source, cacheService cache.Service, ttl time.Duration) Service {
	if ttl <= 0 {
		ttl = constants.TTL_PROGRAM_DETAIL
	}
	return &service{source: source, cache: cacheService, ttl: ttl}
}

func (s *service) GetProgram(ctx context.Context, programID int64) (*festapi.Program, error) {
	if programID <= 0 {
		return nil, ErrProgramNotFound
	}

	fetch := func(ctx context.Context) (interface{}, error) {
		p, err := s.source.GetProgram(ctx, programID)
		if err != nil {
			if errors.Is(err, festapi.ErrNotFound) {
				return nil, ErrProgramNotFound
			}
			return nil, fmt.Errorf("load program %d: %w", programID, err)
		}
		return p, nil
	}

	if s.cache == nil {
		p, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return p.(*festapi.Program), nil
	}

	var program festapi.Program
	if err := s.cache.GetOrSet(ctx, constants.BuildProgramDetailKey(programID), s.ttl, fetch, &program); err != nil {
		return nil, err
	}
	return &program, nil
}

func (s *service) Invalidate(ctx context.Context, programID int64) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, constants.BuildProgramDetailKey(programID))
}
