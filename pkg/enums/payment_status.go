package enums

import (
	"fmt"
	"strings"
)

// PaymentStatus is the settlement state of a sales transaction.
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusFailed   PaymentStatus = "Failed"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

var paymentStatusSynonyms = map[string]PaymentStatus{
	"success":    PaymentStatusPaid,
	"successful": PaymentStatusPaid,
	"completed":  PaymentStatusPaid,
	"captured":   PaymentStatusPaid,
	"settled":    PaymentStatusPaid,
	"fail":       PaymentStatusFailed,
	"failure":    PaymentStatusFailed,
	"declined":   PaymentStatusFailed,
	"error":      PaymentStatusFailed,
	"refund":     PaymentStatusRefunded,
	"reversed":   PaymentStatusRefunded,
	"chargeback": PaymentStatusRefunded,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentStatus converts the raw string to PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}

// PaymentStatuses returns the valid set as strings, in declaration order.
func PaymentStatuses() []string {
	out := make([]string, len(validPaymentStatuses))
	for i, p := range validPaymentStatuses {
		out[i] = string(p)
	}
	return out
}

// NormalizePaymentStatus resolves case variants and known synonyms to the
// canonical payment status.
func NormalizePaymentStatus(value string) (PaymentStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return "", false
	}
	for _, candidate := range validPaymentStatuses {
		if strings.ToLower(string(candidate)) == key {
			return candidate, true
		}
	}
	if p, ok := paymentStatusSynonyms[key]; ok {
		return p, true
	}
	return "", false
}
