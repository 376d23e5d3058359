// Package testkit generates vendor inventory sheets and marketplace
// templates for tests and demos.
package testkit

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"gocatalog/domain/sheet"
)

// Field is a column concept a vendor export carries.
type Field string

const (
	FieldSKU         Field = "sku"
	FieldBrand       Field = "brand"
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldColor       Field = "color"
	FieldSize        Field = "size"
	FieldMRP         Field = "mrp"
	FieldPrice       Field = "price"
	FieldQuantity    Field = "quantity"
	FieldWeight      Field = "weight"
	FieldMaterial    Field = "material"
	FieldCategory    Field = "category"
)

var fieldOrder = []Field{
	FieldSKU, FieldBrand, FieldName, FieldDescription, FieldColor, FieldSize,
	FieldMRP, FieldPrice, FieldQuantity, FieldWeight, FieldMaterial, FieldCategory,
}

// Dialects are the header spellings of common inventory exports.
var Dialects = map[string]map[Field]string{
	"erp": {
		FieldSKU: "Item Code", FieldBrand: "Brand Name", FieldName: "Product Name",
		FieldDescription: "Description", FieldColor: "Colour", FieldSize: "Size",
		FieldMRP: "MRP", FieldPrice: "Selling Price", FieldQuantity: "Qty",
		FieldWeight: "Net Weight", FieldMaterial: "Fabric", FieldCategory: "Product Type",
	},
	"seller-central": {
		FieldSKU: "Seller SKU", FieldBrand: "Brand", FieldName: "Item Name",
		FieldDescription: "Product Description", FieldColor: "Color Name", FieldSize: "Size Name",
		FieldMRP: "Maximum Retail Price", FieldPrice: "Your Price", FieldQuantity: "Quantity",
		FieldWeight: "Item Weight", FieldMaterial: "Material Type", FieldCategory: "Category",
	},
	"wholesale": {
		FieldSKU: "Style Code", FieldBrand: "Manufacturer", FieldName: "Style Name",
		FieldDescription: "Details", FieldColor: "Shade", FieldSize: "Apparel Size",
		FieldMRP: "List Price", FieldPrice: "Offer Price", FieldQuantity: "Stock",
		FieldWeight: "Shipping Weight", FieldMaterial: "Composition", FieldCategory: "Department",
	},
}

// Templates are marketplace upload schemas.
var Templates = map[string][]string{
	"amazon": {
		"SKU", "Title", "Brand", "Product Description", "Bullet Point 1", "Colour",
		"Size", "MRP", "Selling Price", "Quantity", "Search Keywords",
	},
	"flipkart": {
		"Seller SKU ID", "Product Title", "Brand", "Color", "Size", "MRP",
		"Your Selling Price", "Stock", "Search Keywords",
	},
	"myntra": {
		"Style Code", "Brand", "Product Display Name", "Base Colour", "Size",
		"MRP", "Fabric", "Article Type",
	},
}

var (
	brands     = []string{"Acme", "Northwind", "Zephyr", "Kestrel", "Lumen"}
	products   = []string{"Runner Shoe", "Trail Shoe", "Crew T-Shirt", "Denim Jacket", "Canvas Tote", "Wool Beanie"}
	colors     = []string{"Red", "Navy", "Olive", "Black", "White", "Mustard"}
	sizes      = []string{"XS", "S", "M", "L", "XL", "8", "9", "10"}
	materials  = []string{"Cotton", "Mesh", "Denim", "Canvas", "Merino Wool", "Polyester"}
	categories = []string{"Footwear", "Topwear", "Outerwear", "Bags", "Accessories"}
)

// InventoryConfig configures the inventory generator
type InventoryConfig struct {
	Rows      int
	Seed      int64
	Dialect   string
	BlankRate float64 // probability that an optional cell is left empty
}

// DefaultInventoryConfig returns a small erp-style export
func DefaultInventoryConfig() InventoryConfig {
	return InventoryConfig{Rows: 40, Seed: 42, Dialect: "erp", BlankRate: 0.1}
}

// InventoryGenerator generates vendor inventory sheets
type InventoryGenerator struct {
	config InventoryConfig
	rng    *rand.Rand
}

// NewInventoryGenerator creates a new generator. The same config always
// yields the same sheet.
func NewInventoryGenerator(config InventoryConfig) *InventoryGenerator {
	return &InventoryGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the raw sheet.
func (g *InventoryGenerator) Generate() (*sheet.Data, error) {
	dialect, ok := Dialects[g.config.Dialect]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (have %s)", g.config.Dialect, strings.Join(DialectNames(), ", "))
	}

	headers := make([]string, len(fieldOrder))
	for i, f := range fieldOrder {
		headers[i] = dialect[f]
	}

	rows := make([]sheet.Row, 0, g.config.Rows)
	for i := 0; i < g.config.Rows; i++ {
		values := g.product(i)
		row := make(sheet.Row, len(values))
		for f, v := range values {
			row[dialect[f]] = v
		}
		rows = append(rows, row)
	}
	return sheet.New(headers, rows)
}

// product draws one catalog item. SKU, brand, name and price are always set.
func (g *InventoryGenerator) product(i int) map[Field]string {
	brand := g.pick(brands)
	name := g.pick(products)
	material := g.pick(materials)
	mrp := 499 + g.rng.Intn(45)*100
	discount := 0.6 + g.rng.Float64()*0.35

	description := fmt.Sprintf("%s %s in %s. Built for everyday wear with a comfortable fit and easy care.",
		brand, strings.ToLower(name), strings.ToLower(material))

	values := map[Field]string{
		FieldSKU:         fmt.Sprintf("%s-%04d", strings.ToUpper(brand[:3]), i+1),
		FieldBrand:       brand,
		FieldName:        name,
		FieldDescription: description,
		FieldMRP:         fmt.Sprintf("%d", mrp),
		FieldPrice:       fmt.Sprintf("%d", int(float64(mrp)*discount)),
		FieldQuantity:    fmt.Sprintf("%d", g.rng.Intn(200)),
		FieldWeight:      fmt.Sprintf("%.2f kg", 0.15+g.rng.Float64()),
	}
	g.optional(values, FieldColor, g.pick(colors))
	g.optional(values, FieldSize, g.pick(sizes))
	g.optional(values, FieldMaterial, material)
	g.optional(values, FieldCategory, g.pick(categories))
	return values
}

func (g *InventoryGenerator) optional(values map[Field]string, f Field, v string) {
	if g.rng.Float64() >= g.config.BlankRate {
		values[f] = v
	}
}

func (g *InventoryGenerator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

// Template returns the named marketplace template as an empty sheet.
func Template(marketplace string) (*sheet.Data, error) {
	headers, ok := Templates[strings.ToLower(marketplace)]
	if !ok {
		return nil, fmt.Errorf("unknown marketplace template %q", marketplace)
	}
	return sheet.New(headers, nil)
}

// DialectNames lists the dialects in sorted order.
func DialectNames() []string {
	names := make([]string, 0, len(Dialects))
	for name := range Dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
