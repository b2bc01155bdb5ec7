package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"studyStrideAPI/internal/progression"
	"studyStrideAPI/middleware"
	"studyStrideAPI/services"
)

type ProgressionHandler struct {
	progressionService *services.ProgressionService
}

func NewProgressionHandler(progressionService *services.ProgressionService) *ProgressionHandler {
	return &ProgressionHandler{
		progressionService: progressionService,
	}
}

type gainXPRequest struct {
	SourceID   string `json:"source_id"`
	SourceType string `json:"source_type"`
	Amount     int64  `json:"amount"`
}

// GainXP credits one completed action. Safe to retry: a repeated source_id
// returns the original result with a 200.
func (h *ProgressionHandler) GainXP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req gainXPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SourceID == "" {
		respondWithError(w, http.StatusBadRequest, "source_id is required")
		return
	}

	result, err := h.progressionService.GainXP(ctx, clerkID, req.SourceID, progression.SourceType(req.SourceType), req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, progression.ErrInvalidAmount), errors.Is(err, progression.ErrUnknownSource):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, progression.ErrConflict):
			respondWithError(w, http.StatusServiceUnavailable, "Progress is being updated, please retry")
		default:
			log.Printf("GainXP Handler: error for user %s: %v", clerkID, err)
			respondWithError(w, http.StatusInternalServerError, "Failed to apply XP gain")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *ProgressionHandler) Prestige(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	result, err := h.progressionService.Prestige(ctx, clerkID)
	if err != nil {
		switch {
		case errors.Is(err, progression.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "No progress record")
		case errors.Is(err, progression.ErrNotMaxLevel):
			respondWithError(w, http.StatusBadRequest, "Prestige requires max level")
		case errors.Is(err, progression.ErrConflict):
			respondWithError(w, http.StatusServiceUnavailable, "Progress is being updated, please retry")
		default:
			log.Printf("Prestige Handler: error for user %s: %v", clerkID, err)
			respondWithError(w, http.StatusInternalServerError, "Failed to prestige")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *ProgressionHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	view, err := h.progressionService.GetProgress(ctx, clerkID)
	if err != nil {
		if errors.Is(err, progression.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "No progress record")
			return
		}
		log.Printf("GetProgress Handler: error for user %s: %v", clerkID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load progress")
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

func (h *ProgressionHandler) GetBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	badges, err := h.progressionService.GetBadgeCatalog(ctx, clerkID)
	if err != nil {
		log.Printf("GetBadges Handler: error for user %s: %v", clerkID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load badges")
		return
	}

	respondWithJSON(w, http.StatusOK, badges)
}

func (h *ProgressionHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	achievements, err := h.progressionService.GetAchievementCatalog(ctx, clerkID)
	if err != nil {
		log.Printf("GetAchievements Handler: error for user %s: %v", clerkID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load achievements")
		return
	}

	respondWithJSON(w, http.StatusOK, achievements)
}

// GetLevels serves the static curve so clients render thresholds instead of
// reconstructing the formula.
func (h *ProgressionHandler) GetLevels(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.progressionService.GetLevelCatalog())
}
