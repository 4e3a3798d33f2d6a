package enums

import (
	"fmt"
	"strings"
)

// Channel is the closed set of sales channels a store can trade on.
type Channel string

const (
	ChannelOnline      Channel = "Online"
	ChannelOffline     Channel = "Offline"
	ChannelStore       Channel = "Store"
	ChannelWebsite     Channel = "Website"
	ChannelMobile      Channel = "Mobile"
	ChannelMarketplace Channel = "Marketplace"
)

var validChannels = []Channel{
	ChannelOnline,
	ChannelOffline,
	ChannelStore,
	ChannelWebsite,
	ChannelMobile,
	ChannelMarketplace,
}

var channelSynonyms = map[string]Channel{
	"app":          ChannelMobile,
	"mobile app":   ChannelMobile,
	"web":          ChannelWebsite,
	"site":         ChannelWebsite,
	"e-commerce":   ChannelOnline,
	"ecommerce":    ChannelOnline,
	"online store": ChannelOnline,
	"shop":         ChannelStore,
	"retail":       ChannelStore,
	"in-store":     ChannelStore,
	"mp":           ChannelMarketplace,
	"market place": ChannelMarketplace,
}

// String implements fmt.Stringer.
func (c Channel) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Channel.
func (c Channel) IsValid() bool {
	for _, candidate := range validChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChannel converts the raw string to Channel.
func ParseChannel(value string) (Channel, error) {
	for _, candidate := range validChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid channel %q", value)
}

// Channels returns the valid set as strings, in declaration order.
func Channels() []string {
	out := make([]string, len(validChannels))
	for i, c := range validChannels {
		out[i] = string(c)
	}
	return out
}

// NormalizeChannel resolves case variants and known synonyms to the
// canonical channel.
func NormalizeChannel(value string) (Channel, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return "", false
	}
	for _, candidate := range validChannels {
		if strings.ToLower(string(candidate)) == key {
			return candidate, true
		}
	}
	if c, ok := channelSynonyms[key]; ok {
		return c, true
	}
	return "", false
}
