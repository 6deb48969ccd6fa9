package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"questionsbattle/internal/engine"
	"questionsbattle/internal/service"
)

// RoomHandler handles room endpoints
type RoomHandler struct {
	gameSvc *service.GameService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(gameSvc *service.GameService) *RoomHandler {
	return &RoomHandler{gameSvc: gameSvc}
}

// PlayerRequest names the acting participant for room operations
type PlayerRequest struct {
	PlayerName string `json:"playerName"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.PlayerName == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "playerName is required")
		return
	}

	code, snapshot, err := h.gameSvc.CreateRoom(r.Context(), req.PlayerName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"roomCode": code,
		"game":     snapshot,
	})
}

// Join handles POST /v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req PlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.PlayerName == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "playerName is required")
		return
	}

	snapshot, err := h.gameSvc.JoinRoom(r.Context(), code, req.PlayerName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// Start handles POST /v1/rooms/{code}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req PlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	snapshot, err := h.gameSvc.StartGame(r.Context(), code, req.PlayerName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// End handles POST /v1/rooms/{code}/end
func (h *RoomHandler) End(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req PlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	snapshot, err := h.gameSvc.ForceEnd(r.Context(), code, req.PlayerName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// Get handles GET /v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	snapshot, err := h.gameSvc.GetSnapshot(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// writeServiceError maps service/engine errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	code := service.ErrorCode(err)
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrNotAdmin):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrRoomExists),
		errors.Is(err, engine.ErrRoomFull),
		errors.Is(err, engine.ErrDuplicatePlayer),
		errors.Is(err, engine.ErrWrongStatus),
		errors.Is(err, engine.ErrWrongTurn),
		errors.Is(err, engine.ErrJudgmentPending),
		errors.Is(err, engine.ErrNotEnoughPlayers):
		status = http.StatusConflict
	case code == "internal":
		status = http.StatusInternalServerError
	}
	writeError(w, status, code, err.Error())
}
