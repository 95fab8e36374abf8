// HTTP handlers for trust scoring.
//
// Routes:
//
//	GET /companies/{id}/risk-score → recompute and return the trust score
package trustscore

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"jobmate/trust-service/internal/web"
)

// riskScoreResponse is the JSON shape returned to the Gateway.
type riskScoreResponse struct {
	RiskLevel   string   `json:"riskLevel"`
	RiskScore   float64  `json:"riskScore"`
	RiskMessage string   `json:"riskMessage"`
	RiskDetails []string `json:"riskDetails"`
	RiskFactors []Factor `json:"riskFactors"`
}

// Handler holds shared dependencies for the scoring routes.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the scoring routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/companies/", h.handleCompanyAction)
}

// handleCompanyAction handles GET /companies/{id}/risk-score
func (h *Handler) handleCompanyAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[2] != "risk-score" {
		web.Error(w, "invalid path", http.StatusNotFound)
		return
	}
	companyID := parts[1]

	res, err := h.svc.CompanyRiskScore(r.Context(), companyID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			web.Error(w, "company not found", http.StatusNotFound)
			return
		}
		log.Printf("[trust] riskScore error for company %s: %v", companyID, err)
		web.Error(w, "database error", http.StatusInternalServerError)
		return
	}

	details := make([]string, 0, len(res.Factors))
	for _, f := range res.Factors {
		details = append(details, f.Description)
	}

	web.JSON(w, riskScoreResponse{
		RiskLevel:   string(res.Level),
		RiskScore:   res.Score,
		RiskMessage: res.Message,
		RiskDetails: details,
		RiskFactors: res.Factors,
	})
}
