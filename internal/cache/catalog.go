package cache

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/seopilot/internal/models"
)

type ProductFinder interface {
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
}

// CatalogLookup serves SKU lookups from the cache before hitting the
// product store. Only hits are cached; cache faults fall through.
type CatalogLookup struct {
	next  ProductFinder
	cache Cache
	ttl   time.Duration
	log   logrus.FieldLogger
}

func NewCatalogLookup(next ProductFinder, c Cache, ttl time.Duration, log logrus.FieldLogger) *CatalogLookup {
	return &CatalogLookup{next: next, cache: c, ttl: ttl, log: log}
}

func skuKey(sku string) string { return "catalog:sku:" + sku }

func (l *CatalogLookup) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var p models.Product
	hit, err := l.cache.GetJSON(ctx, skuKey(sku), &p)
	if err != nil {
		l.log.WithError(err).WithField("sku", sku).Debug("catalog cache read failed")
	}
	if hit {
		return &p, nil
	}

	found, err := l.next.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if err := l.cache.SetJSON(ctx, skuKey(sku), found, l.ttl); err != nil {
		l.log.WithError(err).WithField("sku", sku).Debug("catalog cache write failed")
	}
	return found, nil
}

// Invalidate drops cached entries after a catalog import touched them.
func (l *CatalogLookup) Invalidate(ctx context.Context, skus ...string) error {
	keys := make([]string, len(skus))
	for i, s := range skus {
		keys[i] = skuKey(s)
	}
	return l.cache.Del(ctx, keys...)
}
