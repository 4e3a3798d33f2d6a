package enums

import (
	"fmt"
	"strings"
)

// Category is the normalized product category set. The catalog is
// open-ended upstream, so normalization maps common variants here and the
// cleaner keeps anything that resolves.
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryFashion     Category = "Fashion"
	CategoryGrocery     Category = "Grocery"
	CategoryBeauty      Category = "Beauty"
	CategoryHome        Category = "Home"
	CategorySports      Category = "Sports"
	CategoryToys        Category = "Toys"
	CategoryBooks       Category = "Books"
)

var validCategories = []Category{
	CategoryElectronics,
	CategoryFashion,
	CategoryGrocery,
	CategoryBeauty,
	CategoryHome,
	CategorySports,
	CategoryToys,
	CategoryBooks,
}

var categorySynonyms = map[string]Category{
	"electronic":     CategoryElectronics,
	"elec":           CategoryElectronics,
	"tech":           CategoryElectronics,
	"apparel":        CategoryFashion,
	"clothing":       CategoryFashion,
	"clothes":        CategoryFashion,
	"food":           CategoryGrocery,
	"groceries":      CategoryGrocery,
	"supermarket":    CategoryGrocery,
	"cosmetics":      CategoryBeauty,
	"personal care":  CategoryBeauty,
	"household":      CategoryHome,
	"home & garden":  CategoryHome,
	"furniture":      CategoryHome,
	"sport":          CategorySports,
	"sporting goods": CategorySports,
	"toy":            CategoryToys,
	"games":          CategoryToys,
	"book":           CategoryBooks,
	"stationery":     CategoryBooks,
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Category.
func (c Category) IsValid() bool {
	for _, candidate := range validCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCategory converts the raw string to Category.
func ParseCategory(value string) (Category, error) {
	for _, candidate := range validCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", value)
}

// Categories returns the valid set as strings, in declaration order.
func Categories() []string {
	out := make([]string, len(validCategories))
	for i, c := range validCategories {
		out[i] = string(c)
	}
	return out
}

// NormalizeCategory resolves case variants and known synonyms to the
// canonical category.
func NormalizeCategory(value string) (Category, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return "", false
	}
	for _, candidate := range validCategories {
		if strings.ToLower(string(candidate)) == key {
			return candidate, true
		}
	}
	if c, ok := categorySynonyms[key]; ok {
		return c, true
	}
	return "", false
}
