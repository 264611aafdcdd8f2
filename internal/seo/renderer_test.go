package seo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_Scalar(t *testing.T) {
	var r Renderer
	assert.Equal(t, "Hello World", r.Render("Hello {{name}}", Vars{{Key: "name", Value: "World"}}))
}

func TestRender_ObjectIsPrettyJSON(t *testing.T) {
	var r Renderer
	out := r.Render("Data:\n{{product}}", Vars{}.With("product", map[string]any{
		"sku":  "ABC1",
		"url":  "https://shop.test/a/b",
		"note": "<b>bold</b>",
	}))

	assert.Equal(t, "Data:\n{\n    \"note\": \"<b>bold</b>\",\n    \"sku\": \"ABC1\",\n    \"url\": \"https://shop.test/a/b\"\n}", out)
}

func TestRender_UnresolvedAndCaseSensitive(t *testing.T) {
	var r Renderer
	out := r.Render("{{a}} {{A}} {{missing}}", Vars{{Key: "a", Value: 1}})
	assert.Equal(t, "1 {{A}} {{missing}}", out)
}

func TestRender_NotRecursive(t *testing.T) {
	var r Renderer
	out := r.Render("{{first}}", Vars{
		{Key: "first", Value: "{{second}}"},
		{Key: "second", Value: "boom"},
	})
	// substitution runs in order, so the injected placeholder is resolved
	// by the later var but never re-expanded afterwards
	assert.Equal(t, "boom", out)

	out = r.Render("{{second}}{{first}}", Vars{
		{Key: "second", Value: "x"},
		{Key: "first", Value: "{{second}}"},
	})
	assert.Equal(t, "x{{second}}", out)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "0.95", Stringify(0.95))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "[\n    \"a\",\n    \"b\"\n]", Stringify([]string{"a", "b"}))
	assert.Equal(t, "{\n    \"meta_title\": \"T\",\n    \"meta_description\": \"\",\n    \"meta_keywords\": \"\"\n}",
		Stringify(GeneratedContent{MetaTitle: "T"}))
}
