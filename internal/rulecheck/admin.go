// Rule administration endpoints. The Gateway authenticates admins and
// forwards the caller's role in x-user-role, the same trust model as the
// x-user-id header on the tracker routes.
//
// Routes:
//
//	GET    /rules        → list all rules
//	POST   /rules        → create a rule
//	PUT    /rules/{id}   → replace a rule
//	DELETE /rules/{id}   → delete a rule
package rulecheck

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"jobmate/trust-service/internal/model"
	"jobmate/trust-service/internal/web"
)

var validate = validator.New()

// rulePayload is the create/update body. Content stays opaque on write:
// a bad config degrades to engine defaults at evaluation time instead of
// failing here.
type rulePayload struct {
	RuleType string `json:"ruleType" validate:"required,oneof=SENSITIVE_WORD DUPLICATE_DETECTION CONTENT_QUALITY"`
	Content  string `json:"content" validate:"required"`
	Action   string `json:"action" validate:"required,oneof=BLOCK MARK"`
	Enabled  bool   `json:"enabled"`
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("x-user-role") != "admin" {
		web.Error(w, "admin role required", http.StatusForbidden)
		return false
	}
	return true
}

// handleRules handles GET /rules and POST /rules.
func (h *Handler) handleRules(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.listRules(w, r)
	case http.MethodPost:
		h.createRule(w, r)
	default:
		web.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleRuleByID handles PUT/DELETE /rules/{id}.
func (h *Handler) handleRuleByID(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 2 {
		web.Error(w, "invalid path", http.StatusNotFound)
		return
	}
	ruleID := parts[1]

	switch r.Method {
	case http.MethodPut:
		h.updateRule(w, r, ruleID)
	case http.MethodDelete:
		h.deleteRule(w, r, ruleID)
	default:
		web.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.ListRules(r.Context())
	if err != nil {
		log.Printf("[trust] listRules error: %v", err)
		web.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	web.JSON(w, rules)
}

func (h *Handler) createRule(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeRulePayload(w, r)
	if !ok {
		return
	}

	rule, err := h.svc.CreateRule(r.Context(), model.RiskRule{
		ID:       uuid.NewString(),
		RuleType: model.RuleType(payload.RuleType),
		Content:  payload.Content,
		Action:   model.RuleAction(payload.Action),
		Enabled:  payload.Enabled,
	})
	if err != nil {
		log.Printf("[trust] createRule error: %v", err)
		web.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	web.JSON(w, rule)
}

func (h *Handler) updateRule(w http.ResponseWriter, r *http.Request, ruleID string) {
	payload, ok := decodeRulePayload(w, r)
	if !ok {
		return
	}

	rule, err := h.svc.UpdateRule(r.Context(), model.RiskRule{
		ID:       ruleID,
		RuleType: model.RuleType(payload.RuleType),
		Content:  payload.Content,
		Action:   model.RuleAction(payload.Action),
		Enabled:  payload.Enabled,
	})
	if err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			web.Error(w, "rule not found", http.StatusNotFound)
			return
		}
		log.Printf("[trust] updateRule error: %v", err)
		web.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	web.JSON(w, rule)
}

func (h *Handler) deleteRule(w http.ResponseWriter, r *http.Request, ruleID string) {
	if err := h.svc.DeleteRule(r.Context(), ruleID); err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			web.Error(w, "rule not found", http.StatusNotFound)
			return
		}
		log.Printf("[trust] deleteRule error: %v", err)
		web.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	web.JSON(w, map[string]string{"status": "deleted", "id": ruleID})
}

// decodeRulePayload decodes and validates a rule body, writing the error
// response itself on failure.
func decodeRulePayload(w http.ResponseWriter, r *http.Request) (*rulePayload, bool) {
	var payload rulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		web.Error(w, "invalid JSON body", http.StatusBadRequest)
		return nil, false
	}
	if err := validate.Struct(&payload); err != nil {
		web.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return &payload, true
}
