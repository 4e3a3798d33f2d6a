package enums

import (
	"fmt"
	"strings"
)

// City is the closed set of UAE emirates a store can belong to.
type City string

const (
	CityDubai        City = "Dubai"
	CityAbuDhabi     City = "Abu Dhabi"
	CitySharjah      City = "Sharjah"
	CityAjman        City = "Ajman"
	CityRasAlKhaimah City = "Ras Al Khaimah"
	CityFujairah     City = "Fujairah"
	CityUmmAlQuwain  City = "Umm Al Quwain"
)

var validCities = []City{
	CityDubai,
	CityAbuDhabi,
	CitySharjah,
	CityAjman,
	CityRasAlKhaimah,
	CityFujairah,
	CityUmmAlQuwain,
}

// citySynonyms maps lowercased variant spellings to the canonical city.
var citySynonyms = map[string]City{
	"dubayy":         CityDubai,
	"dxb":            CityDubai,
	"abudhabi":       CityAbuDhabi,
	"abu-dhabi":      CityAbuDhabi,
	"auh":            CityAbuDhabi,
	"sharja":         CitySharjah,
	"shj":            CitySharjah,
	"rak":            CityRasAlKhaimah,
	"ras al khaimah": CityRasAlKhaimah,
	"uaq":            CityUmmAlQuwain,
}

// String implements fmt.Stringer.
func (c City) String() string {
	return string(c)
}

// IsValid reports whether the value is a known City.
func (c City) IsValid() bool {
	for _, candidate := range validCities {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCity converts the raw string to City.
func ParseCity(value string) (City, error) {
	for _, candidate := range validCities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid city %q", value)
}

// Cities returns the valid set as strings, in declaration order.
func Cities() []string {
	out := make([]string, len(validCities))
	for i, c := range validCities {
		out[i] = string(c)
	}
	return out
}

// NormalizeCity resolves case variants and known synonyms to the canonical
// city. The boolean is false when the value is outside the closed set.
func NormalizeCity(value string) (City, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return "", false
	}
	for _, candidate := range validCities {
		if strings.ToLower(string(candidate)) == key {
			return candidate, true
		}
	}
	if c, ok := citySynonyms[key]; ok {
		return c, true
	}
	return "", false
}
