package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/uaepulse/pulse-backend/pkg/errors"
)

type samplePayload struct {
	Name  string  `json:"name" validate:"required"`
	Share float64 `json:"share" validate:"gte=0,lte=100"`
}

func decodeRequest(t *testing.T, body string, dest any) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return DecodeJSONBody(req, dest)
}

func TestDecodeJSONBodyValid(t *testing.T) {
	var payload samplePayload
	if err := decodeRequest(t, `{"name":"x","share":10}`, &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Name != "x" || payload.Share != 10 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDecodeJSONBodyUnknownField(t *testing.T) {
	var payload samplePayload
	err := decodeRequest(t, `{"name":"x","extra":true}`, &payload)
	if err == nil {
		t.Fatal("expected unknown-field error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyRangeViolation(t *testing.T) {
	var payload samplePayload
	err := decodeRequest(t, `{"name":"x","share":150}`, &payload)
	if err == nil {
		t.Fatal("expected range error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["share"] == "" {
		t.Fatalf("expected per-field message keyed by json name, got %v", typed.Details())
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?days=14", nil)
	got, err := ParseQueryInt(req, "days", 7, 1, 30)
	if err != nil || got != 14 {
		t.Fatalf("expected 14, got %d err %v", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	got, err = ParseQueryInt(req, "days", 7, 1, 30)
	if err != nil || got != 7 {
		t.Fatalf("expected default 7, got %d err %v", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/?days=45", nil)
	if _, err = ParseQueryInt(req, "days", 7, 1, 30); err == nil {
		t.Fatal("expected out-of-range error")
	}

	req = httptest.NewRequest(http.MethodGet, "/?days=soon", nil)
	if _, err = ParseQueryInt(req, "days", 7, 1, 30); err == nil {
		t.Fatal("expected non-numeric error")
	}
}
