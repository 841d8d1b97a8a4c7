package httpserver

import (
	"net/http"

	"github.com/agrirate/agrirate/internal/service"
)

type registerResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type meResponse struct {
	User userResponse `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	user, err := s.accounts.Register(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, r, "register", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, registerResponse{Message: "User registered", User: toUserResponse(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	result, err := s.accounts.Login(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, r, "login", err)
		return
	}
	s.respondJSON(w, http.StatusOK, loginResponse{Token: result.Token, User: toUserResponse(result.User)})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.accounts.Me(r.Context(), actorFrom(r.Context()))
	if err != nil {
		s.respondServiceError(w, r, "me", err)
		return
	}
	s.respondJSON(w, http.StatusOK, meResponse{User: toUserResponse(user)})
}
