// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/policy-swipe/analysis"
	"github.com/danielhkuo/policy-swipe/auth"
	"github.com/danielhkuo/policy-swipe/catalog"
	"github.com/danielhkuo/policy-swipe/cliparse"
	"github.com/danielhkuo/policy-swipe/liked"
	"github.com/danielhkuo/policy-swipe/middleware"
	"github.com/danielhkuo/policy-swipe/models"
)

// MsgNoLikes is returned by the analysis view before anything was liked
const MsgNoLikes = "no liked policies yet"

type AnalysisHandler struct {
	likes    *liked.Registry
	cfg      cliparse.Config
	store    *catalog.Store
	analysis *analysis.Service
}

// NewAnalysisHandler creates the genre analysis handler. analysisSvc may be nil.
func NewAnalysisHandler(likes *liked.Registry, cfg cliparse.Config, store *catalog.Store, analysisSvc *analysis.Service) *AnalysisHandler {
	return &AnalysisHandler{likes: likes, cfg: cfg, store: store, analysis: analysisSvc}
}

// GetAnalysis handles GET /analysis
// Returns the genre breakdown of the device's liked policies and the last
// nickname label
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	hash, ok := deviceHash(w, r, h.cfg)
	if !ok {
		return
	}

	set := h.likes.Get(r.Context(), auth.LikedKey(hash))
	items := h.store.Resolve(set.List())

	resp := models.AnalysisResponse{
		TotalLiked: len(items),
		Genres:     analysis.Breakdown(items),
	}
	if len(items) == 0 {
		resp.Message = MsgNoLikes
	}
	if h.analysis != nil {
		if label, found := h.analysis.Label(r.Context(), auth.AnalysisKey(hash)); found {
			resp.Nickname = label.Nickname
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
