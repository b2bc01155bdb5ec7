package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"studyStrideAPI/internal/leaderboard"
	"studyStrideAPI/middleware"
	"studyStrideAPI/services"
)

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

// GetLeaderboard serves ranked standings. Query params: category
// (xp|streak|badges|momentum, default xp), timeframe
// (weekly|monthly|all_time, default all_time), limit.
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, ok := middleware.GetClerkID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	category := leaderboard.Category(r.URL.Query().Get("category"))
	if category == "" {
		category = leaderboard.CategoryXP
	}
	timeframe := leaderboard.Timeframe(r.URL.Query().Get("timeframe"))
	if timeframe == "" {
		timeframe = leaderboard.TimeframeAllTime
	}
	if !leaderboard.ValidCategory(category) || !leaderboard.ValidTimeframe(timeframe) {
		respondWithError(w, http.StatusBadRequest, "Invalid category or timeframe")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	board, err := h.leaderboardService.GetLeaderboard(ctx, category, timeframe, limit)
	if err != nil {
		log.Printf("GetLeaderboard Handler: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}
