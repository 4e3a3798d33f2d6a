package controllers

import (
	"net/http"

	"github.com/uaepulse/pulse-backend/api/responses"
	"github.com/uaepulse/pulse-backend/internal/cleaning"
	"github.com/uaepulse/pulse-backend/internal/dataset"
	"github.com/uaepulse/pulse-backend/internal/session"
	"github.com/uaepulse/pulse-backend/pkg/logger"
)

// CleaningRun executes a full cleaning pass over the session's raw uploads
// and stores the result for the KPI and simulation reads.
func CleaningRun(pipeline *cleaning.Pipeline, store *session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, stores, sales, inventory := store.RawAll()

		result, err := pipeline.CleanAll(r.Context(), products, stores, sales, inventory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.SetResult(result)

		responses.WriteSuccess(w, map[string]any{
			"run_id": result.Issues.RunID,
			"stats":  result.Stats,
			"issues": len(result.Issues.Issues),
		})
	}
}

// CleaningIssues returns the latest run's issue log as JSON.
func CleaningIssues(store *session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := store.Result()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"run_id": result.Issues.RunID,
			"issues": result.Issues.Issues,
		})
	}
}

// CleaningIssuesCSV downloads the latest run's issue log as CSV.
func CleaningIssuesCSV(store *session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := store.Result()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := responses.WriteCSV(w, "cleaning_issues.csv", func(w http.ResponseWriter) error {
			return dataset.WriteIssuesCSV(w, result.Issues)
		}); err != nil && logg != nil {
			logg.Error(r.Context(), "streaming issues csv", err)
		}
	}
}

// CleaningStats returns the latest run's summary statistics.
func CleaningStats(store *session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := store.Result()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result.Stats)
	}
}
