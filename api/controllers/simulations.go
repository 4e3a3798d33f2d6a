package controllers

import (
	"net/http"

	"github.com/uaepulse/pulse-backend/api/responses"
	"github.com/uaepulse/pulse-backend/api/validators"
	"github.com/uaepulse/pulse-backend/internal/session"
	"github.com/uaepulse/pulse-backend/internal/simulation"
	"github.com/uaepulse/pulse-backend/pkg/logger"
)

// simulationRequest is the wire form of a campaign what-if. Filters and the
// window are optional; zero values fall back to "All" and a one-week
// campaign before the range checks run.
type simulationRequest struct {
	DiscountPct  float64 `json:"discount_pct"`
	PromoBudget  float64 `json:"promo_budget"`
	MarginFloor  float64 `json:"margin_floor"`
	City         string  `json:"city"`
	Channel      string  `json:"channel"`
	Category     string  `json:"category"`
	CampaignDays int     `json:"campaign_days"`
}

func (r simulationRequest) toParams() simulation.Params {
	params := simulation.Params{
		DiscountPct:  r.DiscountPct,
		PromoBudget:  r.PromoBudget,
		MarginFloor:  r.MarginFloor,
		City:         r.City,
		Channel:      r.Channel,
		Category:     r.Category,
		CampaignDays: r.CampaignDays,
	}
	if params.City == "" {
		params.City = simulation.FilterAll
	}
	if params.Channel == "" {
		params.Channel = simulation.FilterAll
	}
	if params.Category == "" {
		params.Category = simulation.FilterAll
	}
	if params.CampaignDays == 0 {
		params.CampaignDays = 7
	}
	return params
}

// SimulationRun projects a promotional campaign over the session data.
func SimulationRun(svc *simulation.Service, store *session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload simulationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, stores, sales, _ := store.TablesForAnalysis()
		result, err := svc.SimulateCampaign(r.Context(), sales, stores, products, payload.toParams())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
