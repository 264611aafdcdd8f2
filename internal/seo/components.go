package seo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/seopilot/internal/models"
	"github.com/yoockh/seopilot/internal/utils"
)

// CatalogLookup resolves linked products by SKU. Implementations return
// utils.ErrNotFound when the SKU is unknown.
type CatalogLookup interface {
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
}

type BundleItem struct {
	SKU         string         `json:"sku"`
	Qty         float64        `json:"qty"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

type BundleInclude struct {
	OptionTitle string       `json:"option_title"`
	Items       []BundleItem `json:"items"`
}

type OptionValues struct {
	Attribute any   `json:"attribute"`
	Values    []any `json:"values"`
}

// Components describes what a bundle includes or which options a
// configurable product offers. The zero value means "none".
type Components struct {
	Type     string
	Includes []BundleInclude
	Options  []OptionValues
}

func (c Components) IsEmpty() bool { return c.Type == "" }

func (c Components) MarshalJSON() ([]byte, error) {
	switch c.Type {
	case string(models.ProductTypeBundle):
		includes := c.Includes
		if includes == nil {
			includes = []BundleInclude{}
		}
		return json.Marshal(struct {
			Type     string          `json:"type"`
			Includes []BundleInclude `json:"includes"`
		}{c.Type, includes})
	case string(models.ProductTypeConfigurable):
		options := c.Options
		if options == nil {
			options = []OptionValues{}
		}
		return json.Marshal(struct {
			Type    string         `json:"type"`
			Options []OptionValues `json:"options"`
		}{c.Type, options})
	}
	return []byte("{}"), nil
}

type ComponentExtractor struct {
	Catalog CatalogLookup
	Log     logrus.FieldLogger
}

// Extract derives bundle or configurable structure from the product's
// extension data. Linked bundle SKUs are enriched from the catalog when
// found.
func (e *ComponentExtractor) Extract(ctx context.Context, p *models.Product) Components {
	if p == nil {
		return Components{}
	}
	ext := p.Extension()

	switch {
	case p.TypeID == models.ProductTypeBundle && len(ext.BundleProductOptions) > 0:
		c := Components{Type: string(models.ProductTypeBundle), Includes: []BundleInclude{}}
		for _, opt := range ext.BundleProductOptions {
			title := opt.Title
			if title == "" {
				title = "Item"
			}
			var items []BundleItem
			for _, link := range opt.ProductLinks {
				if link.SKU == "" {
					continue
				}
				items = append(items, e.bundleItem(ctx, link))
			}
			if len(items) > 0 {
				c.Includes = append(c.Includes, BundleInclude{OptionTitle: title, Items: items})
			}
		}
		return c

	case p.TypeID == models.ProductTypeConfigurable && len(ext.ConfigurableProductOptions) > 0:
		c := Components{Type: string(models.ProductTypeConfigurable), Options: []OptionValues{}}
		for _, opt := range ext.ConfigurableProductOptions {
			var key any
			if !isBlank(opt.AttributeID) {
				key = opt.AttributeID
			} else if opt.Label != "" {
				key = opt.Label
			}
			var values []any
			for _, v := range opt.Values {
				if v.ValueIndex == nil {
					continue
				}
				if v.Label != nil {
					values = append(values, *v.Label)
				} else {
					values = append(values, v.ValueIndex)
				}
			}
			if key == nil || len(values) == 0 {
				continue
			}
			attribute := key
			if opt.Label != "" {
				attribute = opt.Label
			}
			c.Options = append(c.Options, OptionValues{Attribute: attribute, Values: values})
		}
		return c
	}
	return Components{}
}

func (e *ComponentExtractor) bundleItem(ctx context.Context, link models.BundleLink) BundleItem {
	item := BundleItem{SKU: link.SKU, Qty: 1}
	if link.Qty != nil {
		item.Qty = *link.Qty
	}
	if e.Catalog == nil {
		return item
	}

	linked, err := e.Catalog.FindBySKU(ctx, link.SKU)
	if err != nil {
		if !errors.Is(err, utils.ErrNotFound) && e.Log != nil {
			e.Log.WithError(err).WithField("sku", link.SKU).Warn("bundle item lookup failed")
		}
		return item
	}
	if linked == nil {
		return item
	}

	item.Name = linked.Name
	if d := strings.TrimSpace(StripTags(linked.Description)); d != "" {
		item.Description = d
	}
	if attrs := FilterAttributes(linked.AttributeList()); len(attrs) > 0 {
		item.Attributes = attrs
	}
	return item
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}
