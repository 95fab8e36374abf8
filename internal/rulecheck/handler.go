// HTTP handler for content checking.
//
// Routes:
//
//	POST /content/check → evaluate a submission against the enabled rule set
package rulecheck

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"jobmate/trust-service/internal/web"
)

// Handler holds shared dependencies for the rule engine routes.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the content check and rule administration routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/content/check", h.handleCheck)
	mux.HandleFunc("/rules", h.handleRules)
	mux.HandleFunc("/rules/", h.handleRuleByID)
}

// ─── Content check ───────────────────────────────────────────────────────────

type checkRequest struct {
	Content      string `json:"content"`
	Type         string `json:"type"`
	JobID        string `json:"jobId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
}

type riskSummary struct {
	HasBlockRisk    bool     `json:"hasBlockRisk"`
	HasMarkRisk     bool     `json:"hasMarkRisk"`
	BlockedKeywords []string `json:"blockedKeywords"`
}

type checkResponse struct {
	Passed      bool        `json:"passed"`
	Risks       []Match     `json:"risks"`
	Suggestions []string    `json:"suggestions"`
	RiskSummary riskSummary `json:"riskSummary"`
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		web.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body checkRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		web.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	verdict, err := h.svc.CheckContent(r.Context(), CheckInput{
		Content:      body.Content,
		ContextType:  body.Type,
		Title:        body.Title,
		Description:  body.Description,
		Requirements: body.Requirements,
		ExcludeID:    body.JobID,
	})
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			web.Error(w, ve.Msg, http.StatusBadRequest)
			return
		}
		log.Printf("[trust] contentCheck error: %v", err)
		web.Error(w, "database error", http.StatusInternalServerError)
		return
	}

	web.JSON(w, checkResponse{
		Passed:      verdict.Passed,
		Risks:       verdict.Matches,
		Suggestions: verdict.Suggestions,
		RiskSummary: riskSummary{
			HasBlockRisk:    verdict.HasBlockRisk,
			HasMarkRisk:     verdict.HasMarkRisk,
			BlockedKeywords: verdict.BlockedKeywords,
		},
	})
}
