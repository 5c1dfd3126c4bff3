// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/policy-swipe/catalog"
	"github.com/danielhkuo/policy-swipe/middleware"
	"github.com/danielhkuo/policy-swipe/models"
)

type PolicyHandler struct {
	store *catalog.Store
}

func NewPolicyHandler(store *catalog.Store) *PolicyHandler {
	return &PolicyHandler{store: store}
}

// ListPolicies handles GET /policies?q=&summary=1
// Without a query the whole catalog is returned in feed order
func (h *PolicyHandler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	includeSummary := r.URL.Query().Get("summary") == "1"

	middleware.JSONResponse(w, http.StatusOK, models.PoliciesResponse{
		Policies: h.store.Search(query, includeSummary),
	})
}

// GetPolicy handles GET /policies/{id}
func (h *PolicyHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.ByID(r.PathValue("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Policy not found")
		return
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Catalog error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, item)
}
