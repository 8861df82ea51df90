package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvalidator struct {
	calls   int
	removed int
	err     error
}

func (f *fakeInvalidator) InvalidateAll(context.Context) (int, error) {
	f.calls++
	return f.removed, f.err
}

func TestInvalidateListingCache(t *testing.T) {
	cache := &fakeInvalidator{removed: 3}
	require.NoError(t, NewInvalidateListingCacheUseCase(cache).Execute(context.Background(), "property.updated"))
	assert.Equal(t, 1, cache.calls)
}

func TestInvalidateListingCache_Error(t *testing.T) {
	cache := &fakeInvalidator{err: errors.New("redis down")}
	err := NewInvalidateListingCacheUseCase(cache).Execute(context.Background(), "property.deleted")
	assert.ErrorContains(t, err, "redis down")
}

func TestInvalidateListingCache_Disabled(t *testing.T) {
	assert.NoError(t, NewInvalidateListingCacheUseCase(nil).Execute(context.Background(), "property.created"))
}
