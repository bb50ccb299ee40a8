package handlers

import (
	"net/http"

	"github.com/Khyle1o1/student-management-system-sub000/services"
)

type BracketHandler struct {
	bracketService services.BracketService
	seedingService services.SeedingService
}

func NewBracketHandler(bracketService services.BracketService, seedingService services.SeedingService) *BracketHandler {
	return &BracketHandler{
		bracketService: bracketService,
		seedingService: seedingService,
	}
}

func (h *BracketHandler) Create(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	view, err := h.bracketService.CreateBracket(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *BracketHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	view, err := h.bracketService.GetBracketView(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *BracketHandler) Randomize(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, matches, err := h.seedingService.Randomize(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{
		"tournament":         tournament,
		"matches":            matches,
		"attempts_remaining": tournament.AttemptsRemaining(),
	})
}

func (h *BracketHandler) Lock(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.seedingService.Lock(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament})
}
