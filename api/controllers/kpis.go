package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/uaepulse/pulse-backend/api/responses"
	"github.com/uaepulse/pulse-backend/internal/kpi"
	"github.com/uaepulse/pulse-backend/internal/session"
	"github.com/uaepulse/pulse-backend/pkg/logger"
)

// KPIOverall returns the headline figures over the cleaned (or raw) data.
func KPIOverall(svc *kpi.Service, store *session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, _, sales, _ := store.TablesForAnalysis()
		responses.WriteSuccess(w, svc.OverallKPIs(sales, products))
	}
}

// KPIByDimension breaks revenue and profit down by one grouping column.
// Unknown dimensions yield an empty breakdown rather than an error, the
// same as a dimension whose column is absent from the data.
func KPIByDimension(svc *kpi.Service, store *session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dimension := chi.URLParam(r, "dimension")
		products, stores, sales, _ := store.TablesForAnalysis()
		rows := svc.KPIsByDimension(sales, stores, products, dimension)
		responses.WriteSuccess(w, map[string]any{
			"dimension": dimension,
			"rows":      rows,
		})
	}
}

// KPIDaily returns the per-day revenue and profit series.
func KPIDaily(svc *kpi.Service, store *session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, _, sales, _ := store.TablesForAnalysis()
		points, excluded := svc.DailyTrends(sales, products)
		responses.WriteSuccess(w, map[string]any{
			"points":        points,
			"excluded_rows": excluded,
		})
	}
}

// KPIStockout summarizes inventory positions at or below reorder point.
func KPIStockout(svc *kpi.Service, store *session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _, _, inventory := store.TablesForAnalysis()
		responses.WriteSuccess(w, svc.StockoutRiskKPIs(inventory))
	}
}
