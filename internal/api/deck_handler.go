package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/service"
)

// DeckHandler handles deck-related HTTP requests.
type DeckHandler struct {
	deckService service.DeckService
	validator   *validator.Validate
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(deckService service.DeckService) *DeckHandler {
	return &DeckHandler{
		deckService: deckService,
		validator:   validator.New(),
	}
}

// CreateDeck handles POST /api/decks requests.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req DeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	deck, err := h.deckService.CreateDeck(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create deck")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, deckToResponse(deck))
}

// ListDecks handles GET /api/decks requests, returning the user's decks one
// page at a time.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	page := getPagination(r)

	decks, total, err := h.deckService.ListDecks(r.Context(), userID, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list decks")
		return
	}

	items := make([]DeckResponse, len(decks))
	for i, deck := range decks {
		items[i] = deckToResponse(deck)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewPageResponse(items, total, page))
}

// GetDeck handles GET /api/decks/{deckID} requests.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "deckID", nil)
	if !ok {
		return
	}

	deck, err := h.deckService.GetDeck(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get deck")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(deck))
}

// UpdateDeck handles PUT /api/decks/{deckID} requests.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "deckID", nil)
	if !ok {
		return
	}

	var req DeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	deck, err := h.deckService.UpdateDeck(r.Context(), userID, deckID, req.Name, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update deck")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(deck))
}

// DeleteDeck handles DELETE /api/decks/{deckID} requests. Topics within the
// deck are removed with it.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "deckID", nil)
	if !ok {
		return
	}

	if err := h.deckService.DeleteDeck(r.Context(), userID, deckID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete deck")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
