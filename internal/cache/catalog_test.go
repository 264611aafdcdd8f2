package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/seopilot/internal/models"
	"github.com/yoockh/seopilot/internal/utils"
)

type memCache struct {
	data    map[string][]byte
	readErr error
}

func (m *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	if m.readErr != nil {
		return false, m.readErr
	}
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m *memCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *memCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type countingFinder struct {
	calls    int
	products map[string]*models.Product
}

func (f *countingFinder) FindBySKU(_ context.Context, sku string) (*models.Product, error) {
	f.calls++
	if p, ok := f.products[sku]; ok {
		return p, nil
	}
	return nil, utils.ErrNotFound
}

func TestCatalogLookup_CachesHits(t *testing.T) {
	finder := &countingFinder{products: map[string]*models.Product{"MUG-1": {SKU: "MUG-1", Name: "Mug"}}}
	l, _ := test.NewNullLogger()
	lookup := NewCatalogLookup(finder, &memCache{data: map[string][]byte{}}, time.Minute, l)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := lookup.FindBySKU(ctx, "MUG-1")
		require.NoError(t, err)
		assert.Equal(t, "Mug", p.Name)
	}
	assert.Equal(t, 1, finder.calls)

	require.NoError(t, lookup.Invalidate(ctx, "MUG-1"))
	_, err := lookup.FindBySKU(ctx, "MUG-1")
	require.NoError(t, err)
	assert.Equal(t, 2, finder.calls)
}

func TestCatalogLookup_MissesNotCached(t *testing.T) {
	finder := &countingFinder{}
	l, _ := test.NewNullLogger()
	lookup := NewCatalogLookup(finder, &memCache{data: map[string][]byte{}}, time.Minute, l)

	for i := 0; i < 2; i++ {
		_, err := lookup.FindBySKU(context.Background(), "nope")
		assert.ErrorIs(t, err, utils.ErrNotFound)
	}
	assert.Equal(t, 2, finder.calls)
}

func TestCatalogLookup_CacheFaultFallsThrough(t *testing.T) {
	finder := &countingFinder{products: map[string]*models.Product{"A": {SKU: "A"}}}
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	lookup := NewCatalogLookup(finder, &memCache{data: map[string][]byte{}, readErr: errors.New("redis down")}, time.Minute, l)

	p, err := lookup.FindBySKU(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "A", p.SKU)
	assert.NotEmpty(t, hook.AllEntries())
}
