package httpserver

import (
	"net/http"
	"strings"

	"github.com/agrirate/agrirate/internal/service"
)

type ratingListResponse struct {
	Ratings []ratingResponse `json:"ratings"`
}

type ratingMutationResponse struct {
	Message string         `json:"message"`
	Rating  ratingResponse `json:"rating"`
}

func (s *Server) handleListRatings(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(r.URL.Query().Get("productId"))
	if productID == "" {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "productId query parameter is required")
		return
	}

	ratings, err := s.ratings.ListForProduct(r.Context(), actorFrom(r.Context()), productID)
	if err != nil {
		s.respondServiceError(w, r, "list ratings", err)
		return
	}
	s.respondJSON(w, http.StatusOK, ratingListResponse{Ratings: toRatingResponses(ratings)})
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	if err := s.ratings.AuthorizeSubmit(actor); err != nil {
		s.respondServiceError(w, r, "submit rating", err)
		return
	}

	var req service.SubmitInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	result, err := s.ratings.Submit(r.Context(), actor, req)
	if err != nil {
		s.respondServiceError(w, r, "submit rating", err)
		return
	}

	status, message := http.StatusOK, "Rating updated"
	if result.Status == service.StatusCreated {
		status, message = http.StatusCreated, "Rating created"
	}
	s.respondJSON(w, status, ratingMutationResponse{Message: message, Rating: toRatingResponse(result.Rating)})
}
