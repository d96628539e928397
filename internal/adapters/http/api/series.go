package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// maxBodyBytes bounds prediction request bodies.
const maxBodyBytes = 1 << 10

// SeriesHandler serves series cards and prediction submission.
type SeriesHandler struct {
	deps Dependencies
}

// NewSeriesHandler creates a new series handler.
func NewSeriesHandler(deps Dependencies) *SeriesHandler {
	return &SeriesHandler{deps: deps}
}

type predictionRequest struct {
	Score string `json:"score"`
}

// HandleScores handles GET /scores requests.
func (h *SeriesHandler) HandleScores(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Scores())
}

// HandleRounds handles GET /rounds requests.
func (h *SeriesHandler) HandleRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.deps.Rounds(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if rounds == nil {
		rounds = []int{}
	}
	writeJSON(w, http.StatusOK, rounds)
}

// HandleBoard handles GET /rounds/{round}/series requests. Without a user
// header every card shows no prediction.
func (h *SeriesHandler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	round, err := strconv.Atoi(mux.Vars(r)["round"])
	if err != nil || round < 1 {
		writeError(w, fmt.Errorf("%w: round must be a positive integer", ErrBadRequest))
		return
	}
	board, err := h.deps.Board(r.Context(), userID(r), round)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// HandleCard handles GET /series/{slug} requests.
func (h *SeriesHandler) HandleCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.deps.Card(r.Context(), userID(r), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// HandlePutPrediction handles PUT /series/{slug}/prediction requests.
func (h *SeriesHandler) HandlePutPrediction(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		writeError(w, ErrUnauthorized)
		return
	}

	var req predictionRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	card, err := h.deps.SubmitPrediction(r.Context(), user, mux.Vars(r)["slug"], req.Score)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}
