package seo

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/yoockh/seopilot/internal/models"
)

// attributes that describe what the product is; purchase options are left out
var allowedAttributes = map[string]bool{
	"short_description": true,
	"description":       true,

	"color":      true,
	"size":       true,
	"material":   true,
	"weight":     true,
	"dimensions": true,
	"length":     true,
	"width":      true,
	"height":     true,

	"brand":        true,
	"manufacturer": true,
	"model":        true,

	"category_ids": true,

	"flavor":        true,
	"scent":         true,
	"capacity":      true,
	"power":         true,
	"compatibility": true,
	"type":          true,
	"style":         true,
	"finish":        true,
	"pattern":       true,
}

// FilterAttributes reduces a raw attribute list to the SEO-relevant subset.
// Empty values (nil, "", "0", numeric zero) are dropped and description
// fields are reduced to plain text.
func FilterAttributes(attrs []models.Attribute) map[string]any {
	out := make(map[string]any)
	for _, a := range attrs {
		if a.Code == "" || !allowedAttributes[a.Code] {
			continue
		}
		if isEmptyValue(a.Value) {
			continue
		}

		value := a.Value
		if a.Code == "short_description" || a.Code == "description" {
			if s, ok := value.(string); ok {
				s = strings.TrimSpace(StripTags(s))
				if s == "" {
					continue
				}
				value = s
			}
		}
		out[a.Code] = value
	}
	return out
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == "" || t == "0"
	case float64:
		return t == 0
	case float32:
		return t == 0
	case int:
		return t == 0
	case int64:
		return t == 0
	case int32:
		return t == 0
	}
	return false
}

// StripTags returns the text content of an HTML fragment.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
