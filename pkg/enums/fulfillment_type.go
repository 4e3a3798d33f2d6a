package enums

import (
	"fmt"
	"strings"
)

// FulfillmentType describes who handles a store's order fulfillment.
type FulfillmentType string

const (
	FulfillmentOwn      FulfillmentType = "Own"
	FulfillmentThirdPLS FulfillmentType = "3PL"
)

var validFulfillmentTypes = []FulfillmentType{
	FulfillmentOwn,
	FulfillmentThirdPLS,
}

var fulfillmentSynonyms = map[string]FulfillmentType{
	"own fleet":             FulfillmentOwn,
	"in-house":              FulfillmentOwn,
	"inhouse":               FulfillmentOwn,
	"self":                  FulfillmentOwn,
	"third party":           FulfillmentThirdPLS,
	"third-party":           FulfillmentThirdPLS,
	"3rd party":             FulfillmentThirdPLS,
	"third party logistics": FulfillmentThirdPLS,
}

// String implements fmt.Stringer.
func (f FulfillmentType) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentType.
func (f FulfillmentType) IsValid() bool {
	for _, candidate := range validFulfillmentTypes {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFulfillmentType converts the raw string to FulfillmentType.
func ParseFulfillmentType(value string) (FulfillmentType, error) {
	for _, candidate := range validFulfillmentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment type %q", value)
}

// FulfillmentTypes returns the valid set as strings, in declaration order.
func FulfillmentTypes() []string {
	out := make([]string, len(validFulfillmentTypes))
	for i, f := range validFulfillmentTypes {
		out[i] = string(f)
	}
	return out
}

// NormalizeFulfillmentType resolves case variants and known synonyms to the
// canonical fulfillment type.
func NormalizeFulfillmentType(value string) (FulfillmentType, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return "", false
	}
	for _, candidate := range validFulfillmentTypes {
		if strings.ToLower(string(candidate)) == key {
			return candidate, true
		}
	}
	if f, ok := fulfillmentSynonyms[key]; ok {
		return f, true
	}
	return "", false
}
