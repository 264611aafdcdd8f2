package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type ProductType string

const (
	ProductTypeSimple       ProductType = "simple"
	ProductTypeConfigurable ProductType = "configurable"
	ProductTypeBundle       ProductType = "bundle"
)

// Product is a catalog record imported from a store. It is read-only for the
// generation pipeline.
type Product struct {
	ID      string  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StoreID *string `gorm:"column:store_id;type:uuid;index" json:"store_id,omitempty"`

	SKU         string      `gorm:"column:sku;type:text;uniqueIndex" json:"sku"`
	TypeID      ProductType `gorm:"column:type_id;type:text" json:"type_id"`
	Name        string      `gorm:"column:name;type:text" json:"name"`
	Description string      `gorm:"column:description;type:text" json:"description"`

	// raw magento custom_attributes: [{"attribute_code": "...", "value": ...}]
	Attributes          datatypes.JSON `gorm:"column:attributes;type:jsonb" json:"attributes"`
	ExtensionAttributes datatypes.JSON `gorm:"column:extension_attributes;type:jsonb" json:"extension_attributes"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

type Attribute struct {
	Code  string `json:"attribute_code"`
	Value any    `json:"value"`
}

// AttributeList decodes the raw attribute column. Malformed data yields an
// empty list.
func (p *Product) AttributeList() []Attribute {
	if p == nil || len(p.Attributes) == 0 {
		return nil
	}
	var out []Attribute
	if err := json.Unmarshal(p.Attributes, &out); err != nil {
		return nil
	}
	return out
}

type ExtensionAttributes struct {
	BundleProductOptions       []BundleOption       `json:"bundle_product_options,omitempty"`
	ConfigurableProductOptions []ConfigurableOption `json:"configurable_product_options,omitempty"`
}

type BundleOption struct {
	Title        string       `json:"title,omitempty"`
	ProductLinks []BundleLink `json:"product_links,omitempty"`
}

type BundleLink struct {
	SKU string   `json:"sku,omitempty"`
	Qty *float64 `json:"qty,omitempty"`
}

type ConfigurableOption struct {
	AttributeID any                 `json:"attribute_id,omitempty"`
	Label       string              `json:"label,omitempty"`
	Values      []ConfigurableValue `json:"values,omitempty"`
}

type ConfigurableValue struct {
	ValueIndex any     `json:"value_index,omitempty"`
	Label      *string `json:"label,omitempty"`
}

func (p *Product) Extension() ExtensionAttributes {
	var ext ExtensionAttributes
	if p == nil || len(p.ExtensionAttributes) == 0 {
		return ext
	}
	_ = json.Unmarshal(p.ExtensionAttributes, &ext)
	return ext
}
