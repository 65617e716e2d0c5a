package programs

import (
	"context"
	"errors"
	"testing"
	"time"

	"festbook/internal/festapi"
	"festbook/internal/shared/constants"
	"festbook/pkg/cache"
	"festbook/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	programs map[int64]festapi.Program
	err      error
	calls    int
}

func (f *fakeSource) GetProgram(_ context.Context, id int64) (*festapi.Program, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.programs[id]
	if !ok {
		return nil, &festapi.APIError{StatusCode: 404, Message: "Not Found"}
	}
	return &p, nil
}

func newCachedService(t *testing.T, src Source) (Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(src, cache.NewService(client, logger.Discard()), time.Minute), mr
}

func TestGetProgram_CachesDetail(t *testing.T) {
	src := &fakeSource{programs: map[int64]festapi.Program{
		9: {ID: 9, Title: "Hack Night", BookingType: festapi.BookingTypeGroup, MaxGroupMembers: 4, TicketPrice: 250},
	}}
	svc, mr := newCachedService(t, src)

	first, err := svc.GetProgram(context.Background(), 9)
	require.NoError(t, err)
	second, err := svc.GetProgram(context.Background(), 9)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first, second)
	assert.True(t, second.IsGroup())
	assert.True(t, mr.Exists(constants.BuildProgramDetailKey(9)))
	assert.Equal(t, time.Minute, mr.TTL(constants.BuildProgramDetailKey(9)))

	require.NoError(t, svc.Invalidate(context.Background(), 9))
	_, err = svc.GetProgram(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestGetProgram_NotFound(t *testing.T) {
	src := &fakeSource{programs: map[int64]festapi.Program{}}
	svc, mr := newCachedService(t, src)

	_, err := svc.GetProgram(context.Background(), 77)

	assert.ErrorIs(t, err, ErrProgramNotFound)
	assert.False(t, mr.Exists(constants.BuildProgramDetailKey(77)))

	_, err = svc.GetProgram(context.Background(), 0)
	assert.ErrorIs(t, err, ErrProgramNotFound)
}

func TestGetProgram_UpstreamError(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewService(&fakeSource{err: boom}, nil, 0)

	_, err := svc.GetProgram(context.Background(), 1)

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrProgramNotFound)
}

func TestGetProgram_WithoutCache(t *testing.T) {
	src := &fakeSource{programs: map[int64]festapi.Program{1: {ID: 1, Title: "Talk"}}}
	svc := NewService(src, nil, 0)

	p, err := svc.GetProgram(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Talk", p.Title)
	require.NoError(t, svc.Invalidate(context.Background(), 1))
}
