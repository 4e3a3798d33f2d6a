package enums

import (
	"fmt"
	"strings"
)

// LaunchFlag marks whether a product is newly launched or an established
// catalog item.
type LaunchFlag string

const (
	LaunchFlagNew     LaunchFlag = "New"
	LaunchFlagRegular LaunchFlag = "Regular"
)

var validLaunchFlags = []LaunchFlag{
	LaunchFlagNew,
	LaunchFlagRegular,
}

var launchFlagSynonyms = map[string]LaunchFlag{
	"n":        LaunchFlagNew,
	"launch":   LaunchFlagNew,
	"launched": LaunchFlagNew,
	"r":        LaunchFlagRegular,
	"reg":      LaunchFlagRegular,
	"existing": LaunchFlagRegular,
	"old":      LaunchFlagRegular,
}

// String implements fmt.Stringer.
func (l LaunchFlag) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LaunchFlag.
func (l LaunchFlag) IsValid() bool {
	for _, candidate := range validLaunchFlags {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLaunchFlag converts the raw string to LaunchFlag.
func ParseLaunchFlag(value string) (LaunchFlag, error) {
	for _, candidate := range validLaunchFlags {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid launch flag %q", value)
}

// LaunchFlags returns the valid set as strings, in declaration order.
func LaunchFlags() []string {
	out := make([]string, len(validLaunchFlags))
	for i, l := range validLaunchFlags {
		out[i] = string(l)
	}
	return out
}

// NormalizeLaunchFlag resolves case variants and known synonyms to the
// canonical launch flag.
func NormalizeLaunchFlag(value string) (LaunchFlag, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return "", false
	}
	for _, candidate := range validLaunchFlags {
		if strings.ToLower(string(candidate)) == key {
			return candidate, true
		}
	}
	if l, ok := launchFlagSynonyms[key]; ok {
		return l, true
	}
	return "", false
}
