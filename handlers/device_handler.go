package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"studyStrideAPI/middleware"
	"studyStrideAPI/services"
)

type DeviceHandler struct {
	notifier *services.UnlockNotifier
}

func NewDeviceHandler(notifier *services.UnlockNotifier) *DeviceHandler {
	return &DeviceHandler{notifier: notifier}
}

type deviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Platform != "ios" && req.Platform != "android" {
		respondWithError(w, http.StatusBadRequest, "platform must be ios or android")
		return
	}

	if err := h.notifier.RegisterDevice(ctx, clerkID, req.Token, req.Platform); err != nil {
		log.Printf("RegisterDevice Handler: error for user %s: %v", clerkID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to register device")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

func (h *DeviceHandler) UnregisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.notifier.UnregisterDevice(ctx, clerkID, req.Token); err != nil {
		log.Printf("UnregisterDevice Handler: error for user %s: %v", clerkID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to unregister device")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "unregistered"})
}
