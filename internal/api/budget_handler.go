package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/rowanvale/costbook/internal/domain"
	"github.com/rowanvale/costbook/internal/service"
)

type lineItemPayload struct {
	CostCodeID    string   `json:"costCodeId"`
	CostType      string   `json:"costType"`
	SubJobID      string   `json:"subJobId"`
	Amount        float64  `json:"amount"`
	Description   string   `json:"description"`
	Quantity      *float64 `json:"qty"`
	UnitOfMeasure *string  `json:"uom"`
	UnitCost      *float64 `json:"unitCost"`
}

type postBudgetRequest struct {
	LineItems []lineItemPayload `json:"lineItems"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	view, err := s.budget.GetBudget(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePostBudget(w http.ResponseWriter, r *http.Request) {
	var req postBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput))
		return
	}
	items := make([]service.LineItemInput, 0, len(req.LineItems))
	for _, p := range req.LineItems {
		items = append(items, service.LineItemInput{
			CostCodeID:    p.CostCodeID,
			CostTypeID:    p.CostType,
			SubJobID:      p.SubJobID,
			Amount:        p.Amount,
			Description:   p.Description,
			Quantity:      p.Quantity,
			UnitOfMeasure: p.UnitOfMeasure,
			UnitCost:      p.UnitCost,
		})
	}

	lines, err := s.budget.PostLineItems(r.Context(), chi.URLParam(r, "projectID"), actor(r), items)
	if err != nil {
		s.respondError(w, err)
		return
	}

	created := make([]map[string]interface{}, 0, len(lines))
	for _, l := range lines {
		created = append(created, map[string]interface{}{
			"id":         l.ID,
			"costCodeId": l.CostCodeID,
			"costType":   l.CostTypeID,
			"subJobId":   l.SubJobID,
			"amount":     l.OriginalAmount,
		})
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"lineItems": created})
}

func (s *Server) handleLockBudget(w http.ResponseWriter, r *http.Request) {
	s.setBudgetLock(w, r, true)
}

func (s *Server) handleUnlockBudget(w http.ResponseWriter, r *http.Request) {
	s.setBudgetLock(w, r, false)
}

func (s *Server) setBudgetLock(w http.ResponseWriter, r *http.Request, locked bool) {
	if err := s.budget.SetBudgetLock(r.Context(), chi.URLParam(r, "projectID"), actor(r), locked); err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"budgetLocked": locked})
}
