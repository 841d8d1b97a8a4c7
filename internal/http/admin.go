package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/agrirate/agrirate/internal/service"
)

type adminRatingListResponse struct {
	Ratings    []ratingResponse `json:"ratings"`
	NextCursor *string          `json:"nextCursor,omitempty"`
}

type adminRatingResponse struct {
	Rating ratingResponse `json:"rating"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleAdminListRatings(w http.ResponseWriter, r *http.Request) {
	in, err := buildAdminListInput(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	page, err := s.ratings.AdminList(r.Context(), actorFrom(r.Context()), in)
	if err != nil {
		s.respondServiceError(w, r, "admin list ratings", err)
		return
	}
	s.respondJSON(w, http.StatusOK, adminRatingListResponse{
		Ratings:    toRatingResponses(page.Items),
		NextCursor: page.NextCursor,
	})
}

func buildAdminListInput(query url.Values) (service.AdminListInput, error) {
	var in service.AdminListInput
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil || limit < 0 {
			return in, fmt.Errorf("invalid limit value")
		}
		in.Limit = limit
	}
	in.Cursor = strings.TrimSpace(query.Get("cursor"))
	return in, nil
}

func (s *Server) handleAdminGetRating(w http.ResponseWriter, r *http.Request) {
	rating, err := s.ratings.AdminGet(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "ratingID"))
	if err != nil {
		s.respondServiceError(w, r, "admin get rating", err)
		return
	}
	s.respondJSON(w, http.StatusOK, adminRatingResponse{Rating: toRatingResponse(rating)})
}

func (s *Server) handleAdminUpdateRating(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	if err := s.ratings.AuthorizeAdminUpdate(actor); err != nil {
		s.respondServiceError(w, r, "admin update rating", err)
		return
	}

	var req service.AdminUpdateInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	rating, err := s.ratings.AdminUpdate(r.Context(), actor, chi.URLParam(r, "ratingID"), req)
	if err != nil {
		s.respondServiceError(w, r, "admin update rating", err)
		return
	}
	s.respondJSON(w, http.StatusOK, ratingMutationResponse{Message: "Rating updated", Rating: toRatingResponse(rating)})
}

func (s *Server) handleAdminDeleteRating(w http.ResponseWriter, r *http.Request) {
	if err := s.ratings.AdminDelete(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "ratingID")); err != nil {
		s.respondServiceError(w, r, "admin delete rating", err)
		return
	}
	s.respondJSON(w, http.StatusOK, messageResponse{Message: "Rating deleted"})
}
