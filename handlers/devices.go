// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/policy-swipe/auth"
	"github.com/danielhkuo/policy-swipe/catalog"
	"github.com/danielhkuo/policy-swipe/cliparse"
	"github.com/danielhkuo/policy-swipe/liked"
	"github.com/danielhkuo/policy-swipe/middleware"
	"github.com/danielhkuo/policy-swipe/models"
)

// deviceHash reads X-Device-UUID and returns the salted hash that scopes the
// device's stored records. It writes the error response itself.
func deviceHash(w http.ResponseWriter, r *http.Request, cfg cliparse.Config) (string, bool) {
	raw := r.Header.Get(middleware.HeaderDeviceUUID)
	if raw == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Device-UUID header required")
		return "", false
	}
	deviceID, err := auth.ParseDeviceID(raw)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Device-UUID must be a UUID")
		return "", false
	}
	return auth.HashDevice(deviceID, cfg.DeviceSalt), true
}

type LikedHandler struct {
	likes *liked.Registry
	cfg   cliparse.Config
	store *catalog.Store
}

func NewLikedHandler(likes *liked.Registry, cfg cliparse.Config, store *catalog.Store) *LikedHandler {
	return &LikedHandler{likes: likes, cfg: cfg, store: store}
}

// GetLiked handles GET /liked
// Returns the device's liked ids in like order with their policies
func (h *LikedHandler) GetLiked(w http.ResponseWriter, r *http.Request) {
	hash, ok := deviceHash(w, r, h.cfg)
	if !ok {
		return
	}

	set := h.likes.Get(r.Context(), auth.LikedKey(hash))
	middleware.JSONResponse(w, http.StatusOK, h.likedResponse(set))
}

// RemoveLiked handles DELETE /liked/{policyID}
// Removing an id that is not liked is not an error
func (h *LikedHandler) RemoveLiked(w http.ResponseWriter, r *http.Request) {
	policyID := r.PathValue("policyID")
	if policyID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "policy_id is required")
		return
	}

	hash, ok := deviceHash(w, r, h.cfg)
	if !ok {
		return
	}

	set := h.likes.Get(r.Context(), auth.LikedKey(hash))
	if set.Contains(policyID) {
		set.Remove(r.Context(), policyID)
		slog.Info("liked policy removed", "policy_id", policyID, "degraded", set.Degraded())
	}

	middleware.JSONResponse(w, http.StatusOK, h.likedResponse(set))
}

func (h *LikedHandler) likedResponse(set *liked.Set) models.LikedResponse {
	return models.LikedResponse{
		IDs:      set.List(),
		Policies: h.store.Resolve(set.List()),
		Degraded: set.Degraded(),
	}
}
