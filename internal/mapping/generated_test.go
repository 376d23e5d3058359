package mapping

import (
	"testing"

	"gocatalog/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoDetectGeneratedERPExport(t *testing.T) {
	raw, err := testkit.NewInventoryGenerator(testkit.DefaultInventoryConfig()).Generate()
	require.NoError(t, err)
	template, err := testkit.Template("amazon")
	require.NoError(t, err)

	mapping, trace := newTestMapper(MapperOptions{}).DetectWithTrace(template, raw)

	assert.Equal(t, map[string]string{
		"SKU":                 "Item Code",
		"Title":               "Product Name",
		"Brand":               "Brand Name",
		"Product Description": "Description",
		"Colour":              "Colour",
		"Size":                "Size",
		"MRP":                 "MRP",
		"Selling Price":       "Selling Price",
		"Quantity":            "Qty",
	}, map[string]string(mapping))

	tiers := map[string]Tier{}
	for _, m := range trace {
		tiers[m.TemplateHeader] = m.Tier
	}
	assert.Equal(t, TierSynonym, tiers["Title"])
	assert.Equal(t, TierExact, tiers["MRP"])
	assert.Equal(t, TierNone, tiers["Bullet Point 1"])
	assert.Equal(t, TierNone, tiers["Search Keywords"])
}

func TestAutoDetectEveryDialectIsDeterministic(t *testing.T) {
	template, err := testkit.Template("flipkart")
	require.NoError(t, err)
	mapper := newTestMapper(MapperOptions{})

	for _, dialect := range testkit.DialectNames() {
		cfg := testkit.DefaultInventoryConfig()
		cfg.Dialect = dialect
		raw, err := testkit.NewInventoryGenerator(cfg).Generate()
		require.NoError(t, err)

		first := mapper.AutoDetect(template, raw)
		assert.Equal(t, first, mapper.AutoDetect(template, raw), dialect)
		for _, rawHeader := range first {
			assert.True(t, raw.HasHeader(rawHeader), "%s: %q is not a raw header", dialect, rawHeader)
		}
	}
}
