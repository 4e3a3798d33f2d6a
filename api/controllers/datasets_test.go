package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/uaepulse/pulse-backend/internal/session"
	"github.com/uaepulse/pulse-backend/pkg/config"
	"github.com/uaepulse/pulse-backend/pkg/enums"
)

func testDatasetConfig() config.DatasetConfig {
	return config.DatasetConfig{MaxUploadBytes: 1 << 20, SampleSeed: 11, SampleOrders: 50}
}

func multipartCSV(t *testing.T, filename, contents string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(contents)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestDatasetUploadCSV(t *testing.T) {
	store := session.NewStore()
	r := chi.NewRouter()
	r.Post("/api/v1/datasets/{table}", DatasetUpload(store, testDatasetConfig(), nil))

	body, contentType := multipartCSV(t, "products.csv", "sku,category,base_price\nP1,Electronics,100\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/products", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	raw := store.Raw(enums.TableProducts)
	if raw == nil || raw.Len() != 1 {
		t.Fatalf("expected one stored row, got %+v", raw)
	}
}

func TestDatasetUploadUnknownTable(t *testing.T) {
	store := session.NewStore()
	r := chi.NewRouter()
	r.Post("/api/v1/datasets/{table}", DatasetUpload(store, testDatasetConfig(), nil))

	body, contentType := multipartCSV(t, "x.csv", "a\n1\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/customers", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestDatasetUploadUnsupportedExtension(t *testing.T) {
	store := session.NewStore()
	r := chi.NewRouter()
	r.Post("/api/v1/datasets/{table}", DatasetUpload(store, testDatasetConfig(), nil))

	body, contentType := multipartCSV(t, "products.parquet", "not tabular")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/products", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestDatasetUploadMismatchedTableWarns(t *testing.T) {
	store := session.NewStore()
	r := chi.NewRouter()
	r.Post("/api/v1/datasets/{table}", DatasetUpload(store, testDatasetConfig(), nil))

	// sales-shaped file sent to the products endpoint
	body, contentType := multipartCSV(t, "sales.csv", "order_id,sku,store_id,qty,selling_price,order_time\nO1,P1,S1,1,10,2024-01-01\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/products", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data struct {
			Warning string `json:"warning"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(envelope.Data.Warning, "sales") {
		t.Fatalf("expected mismatch warning naming sales, got %q", envelope.Data.Warning)
	}
}

func TestDatasetSampleLoadsAllTables(t *testing.T) {
	store := session.NewStore()
	handler := DatasetSample(store, testDatasetConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/sample", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	for _, name := range enums.TableNames() {
		if store.Raw(name) == nil {
			t.Fatalf("expected %s to be loaded", name)
		}
	}
}

func TestDatasetSummary(t *testing.T) {
	store := session.NewStore()
	r := chi.NewRouter()
	r.Post("/api/v1/datasets/{table}", DatasetUpload(store, testDatasetConfig(), nil))
	r.Get("/api/v1/datasets", DatasetSummary(store, nil))

	body, contentType := multipartCSV(t, "sales.csv", "order_id,sku,store_id,qty,selling_price\nO1,P1,S1,1,10\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/sales", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data struct {
			Tables  map[string]map[string]any `json:"tables"`
			Cleaned bool                      `json:"cleaned"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Cleaned {
		t.Fatal("expected cleaned=false before any run")
	}
	sales := envelope.Data.Tables["sales"]
	if uploaded, _ := sales["uploaded"].(bool); !uploaded {
		t.Fatalf("expected sales uploaded, got %+v", sales)
	}
}

func TestDatasetCleanedCSVRequiresRun(t *testing.T) {
	store := session.NewStore()
	r := chi.NewRouter()
	r.Get("/api/v1/datasets/{table}/cleaned.csv", DatasetCleanedCSV(store, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/datasets/products/cleaned.csv", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("expected json error, got %q", rec.Header().Get("Content-Type"))
	}
}
