package enums

import "fmt"

// CategoryKind names the catalog categories the pricing engine understands.
// The literal values are load-bearing: they are stored in the categories
// table and matched by name when resolving licences and the sizing config.
type CategoryKind string

const (
	CategoryProcessor CategoryKind = "Processor"
	CategoryAI        CategoryKind = "AI"
	CategoryStorage   CategoryKind = "Storage"
	CategoryLicence   CategoryKind = "licence"
	CategorySizing    CategoryKind = "CPU_GPU_Config"
)

var validCategoryKinds = []CategoryKind{
	CategoryProcessor,
	CategoryAI,
	CategoryStorage,
	CategoryLicence,
	CategorySizing,
}

// String implements fmt.Stringer.
func (c CategoryKind) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CategoryKind.
func (c CategoryKind) IsValid() bool {
	for _, candidate := range validCategoryKinds {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCategoryKind converts raw input into a CategoryKind.
func ParseCategoryKind(value string) (CategoryKind, error) {
	for _, candidate := range validCategoryKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category kind %q", value)
}
