package controllers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/uaepulse/pulse-backend/api/responses"
	"github.com/uaepulse/pulse-backend/internal/dataset"
	"github.com/uaepulse/pulse-backend/internal/schema"
	"github.com/uaepulse/pulse-backend/internal/session"
	"github.com/uaepulse/pulse-backend/pkg/config"
	"github.com/uaepulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/uaepulse/pulse-backend/pkg/errors"
	"github.com/uaepulse/pulse-backend/pkg/logger"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

// DatasetUpload ingests one table as a multipart CSV or XLSX file and
// replaces any previous upload for that table.
func DatasetUpload(store *session.Store, cfg config.DatasetConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableName, err := enums.ParseTableName(chi.URLParam(r, "table"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown table name"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)
		if err := r.ParseMultipartForm(cfg.MaxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading multipart upload"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing file field"))
			return
		}
		defer file.Close()

		parsed, err := decodeUpload(file, header.Filename)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.PutRaw(tableName, parsed)

		// headers that classify as a different table type usually mean the
		// file went to the wrong endpoint; flag it but store anyway
		var warning string
		if detected, ok := schema.Detect(parsed.Columns); ok && detected != tableName {
			warning = fmt.Sprintf("columns look like the %s table; uploaded as %s", detected, tableName)
		}

		if logg != nil {
			ctx := logg.WithTable(r.Context(), tableName.String())
			ctx = logg.WithFields(ctx, map[string]any{"rows": parsed.Len(), "filename": header.Filename})
			if warning != "" {
				ctx = logg.WithField(ctx, "warning", warning)
			}
			logg.Info(ctx, "dataset uploaded")
		}

		payload := map[string]any{
			"table":   tableName,
			"rows":    parsed.Len(),
			"columns": parsed.Columns,
		}
		if warning != "" {
			payload["warning"] = warning
		}
		responses.WriteSuccess(w, payload)
	}
}

func decodeUpload(file io.Reader, filename string) (*table.Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return dataset.DecodeCSV(file)
	case ".xlsx", ".xlsm":
		return dataset.DecodeXLSX(file)
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported file type; upload .csv or .xlsx").
		WithDetails(map[string]string{"filename": filename})
}

// DatasetSample loads the generated demo dataset into the session,
// replacing any prior uploads.
func DatasetSample(store *session.Store, cfg config.DatasetConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sample := dataset.GenerateSample(cfg.SampleSeed, cfg.SampleOrders, time.Now().UTC())

		store.PutRaw(enums.TableProducts, sample.Products)
		store.PutRaw(enums.TableStores, sample.Stores)
		store.PutRaw(enums.TableSales, sample.Sales)
		store.PutRaw(enums.TableInventory, sample.Inventory)

		if logg != nil {
			logg.Info(r.Context(), "sample dataset loaded")
		}
		responses.WriteSuccess(w, map[string]any{
			"products":  sample.Products.Len(),
			"stores":    sample.Stores.Len(),
			"sales":     sample.Sales.Len(),
			"inventory": sample.Inventory.Len(),
		})
	}
}

// DatasetSummary reports what the session currently holds.
func DatasetSummary(store *session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uploaded := store.Uploaded()
		tables := make(map[string]any, len(enums.TableNames()))
		for _, name := range enums.TableNames() {
			rows, ok := uploaded[name]
			tables[name.String()] = map[string]any{"uploaded": ok, "rows": rows}
		}
		responses.WriteSuccess(w, map[string]any{
			"tables":  tables,
			"cleaned": store.HasCleaned(),
		})
	}
}

// DatasetReset drops every upload and any cleaning result.
func DatasetReset(store *session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.Reset()
		if logg != nil {
			logg.Info(r.Context(), "session reset")
		}
		responses.WriteSuccess(w, nil)
	}
}

// DatasetCleanedCSV downloads one cleaned table as CSV.
func DatasetCleanedCSV(store *session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableName, err := enums.ParseTableName(chi.URLParam(r, "table"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown table name"))
			return
		}

		result, err := store.Result()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var cleaned *table.Table
		switch tableName {
		case enums.TableProducts:
			cleaned = result.Products
		case enums.TableStores:
			cleaned = result.Stores
		case enums.TableSales:
			cleaned = result.Sales
		case enums.TableInventory:
			cleaned = result.Inventory
		}

		filename := tableName.String() + "_clean.csv"
		if err := responses.WriteCSV(w, filename, func(w http.ResponseWriter) error {
			return dataset.EncodeCSV(w, cleaned)
		}); err != nil && logg != nil {
			// headers are already out; all we can do is log
			logg.Error(r.Context(), "streaming cleaned csv", err)
		}
	}
}
