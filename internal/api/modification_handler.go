package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/rowanvale/costbook/internal/domain"
	"github.com/rowanvale/costbook/internal/service"
)

// createModificationRequest accepts the current field name plus the legacy
// aliases older clients still send. Normalization happens before validation.
type createModificationRequest struct {
	BudgetLineID      string     `json:"budgetLineId"`
	BudgetItemID      string     `json:"budgetItemId"`
	BudgetLineIDSnake string     `json:"budget_line_id"`
	BudgetItemIDSnake string     `json:"budget_item_id"`
	Amount            float64    `json:"amount"`
	Title             string     `json:"title"`
	Reason            string     `json:"reason"`
	Description       string     `json:"description"`
	EffectiveDate     *time.Time `json:"effectiveDate"`
}

func (req *createModificationRequest) budgetLineID() string {
	for _, candidate := range []string{req.BudgetLineID, req.BudgetItemID, req.BudgetLineIDSnake, req.BudgetItemIDSnake} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

type transitionRequest struct {
	ModificationID      string `json:"modificationId"`
	ModificationIDSnake string `json:"modification_id"`
	Action              string `json:"action"`
}

func (req *transitionRequest) modificationID() string {
	if req.ModificationID != "" {
		return req.ModificationID
	}
	return req.ModificationIDSnake
}

func (s *Server) handleListModifications(w http.ResponseWriter, r *http.Request) {
	filter := service.ModificationListFilter{
		Status:       r.URL.Query().Get("status"),
		BudgetLineID: r.URL.Query().Get("budgetLineId"),
	}
	if filter.BudgetLineID == "" {
		filter.BudgetLineID = r.URL.Query().Get("budget_line_id")
	}

	mods, err := s.mods.List(r.Context(), chi.URLParam(r, "projectID"), filter)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"modifications": mods})
}

func (s *Server) handleCreateModification(w http.ResponseWriter, r *http.Request) {
	var req createModificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput))
		return
	}

	mod, err := s.mods.Create(r.Context(), chi.URLParam(r, "projectID"), actor(r), service.ModificationInput{
		BudgetLineID:  req.budgetLineID(),
		Amount:        req.Amount,
		Title:         req.Title,
		Reason:        req.Reason,
		Description:   req.Description,
		EffectiveDate: req.EffectiveDate,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mod)
}

func (s *Server) handleTransitionModification(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput))
		return
	}

	mod, err := s.mods.Transition(r.Context(), chi.URLParam(r, "projectID"), actor(r), req.modificationID(), req.Action)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mod)
}

func (s *Server) handleDeleteModification(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("modificationId")
	if id == "" {
		id = r.URL.Query().Get("modification_id")
	}

	if err := s.mods.Delete(r.Context(), chi.URLParam(r, "projectID"), actor(r), id); err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
