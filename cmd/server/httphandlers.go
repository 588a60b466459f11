package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"example.com/miniter/internal/middleware"
	"example.com/miniter/internal/models"
	"github.com/gorilla/mux"
)

// --- HTTP Handlers ---

func (s *Server) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("pong"))
}

// signUpHandler creates an account.
// Expects JSON body: {"name", "email", "profile", "password"}
// Returns the user without the password.
func (s *Server) signUpHandler(w http.ResponseWriter, r *http.Request) {
	var body models.SignUpRequest
	if !decodeBody(w, r, "http/sign-up", &body) {
		return
	}

	user, err := s.users.SignUp(r.Context(), body)
	if err != nil {
		writeServiceError(w, "http/sign-up", err)
		return
	}

	writeJSON(w, user)
}

// loginHandler returns {"access_token", "user_id"} for valid credentials.
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, "http/login", &body) {
		return
	}

	token, err := s.users.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeServiceError(w, "http/login", err)
		return
	}

	writeJSON(w, token)
}

// tweetHandler posts {"tweet": "..."} as the authenticated user.
func (s *Server) tweetHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tweet string `json:"tweet"`
	}
	if !decodeBody(w, r, "http/tweet", &body) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := s.tweets.PostTweet(r.Context(), userID, body.Tweet); err != nil {
		writeServiceError(w, "http/tweet", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// followHandler expects {"follow": <user id>}.
func (s *Server) followHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Follow int64 `json:"follow"`
	}
	if !decodeBody(w, r, "http/follow", &body) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := s.users.Follow(r.Context(), userID, body.Follow); err != nil {
		writeServiceError(w, "http/follow", err)
		return
	}

	logg.Info("http/follow", "user_id="+strconv.FormatInt(userID, 10)+" followed user_id="+strconv.FormatInt(body.Follow, 10))
	w.WriteHeader(http.StatusOK)
}

// unfollowHandler expects {"unfollow": <user id>}.
func (s *Server) unfollowHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Unfollow int64 `json:"unfollow"`
	}
	if !decodeBody(w, r, "http/unfollow", &body) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := s.users.Unfollow(r.Context(), userID, body.Unfollow); err != nil {
		writeServiceError(w, "http/unfollow", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) followListHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	follow, err := s.users.Followees(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "http/follow", err)
		return
	}

	writeJSON(w, models.FollowList{UserID: userID, Follow: follow})
}

// userTimelineHandler serves GET /timeline/{userId} without authentication.
func (s *Server) userTimelineHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		http.Error(w, "No user", http.StatusBadRequest)
		return
	}
	s.writeTimeline(w, r, userID)
}

func (s *Server) timelineHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	s.writeTimeline(w, r, userID)
}

func (s *Server) writeTimeline(w http.ResponseWriter, r *http.Request, userID int64) {
	entries, err := s.tweets.Timeline(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "http/timeline", err)
		return
	}
	writeJSON(w, models.Timeline{UserID: userID, Timeline: entries})
}

// --- Helpers ---

func decodeBody(w http.ResponseWriter, r *http.Request, module string, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logg.Error(module, "Invalid request body", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logg.Error("http", "Failed to encode response", err)
	}
}

// writeServiceError maps service errors onto HTTP responses.
func writeServiceError(w http.ResponseWriter, module string, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		logg.Info(module, "Rejected request: "+err.Error())
		http.Error(w, errorDetail(err, models.ErrValidation), http.StatusBadRequest)
	case errors.Is(err, models.ErrAuth):
		logg.Info(module, "Authentication failed")
		w.WriteHeader(http.StatusUnauthorized)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "No user", http.StatusBadRequest)
	case errors.Is(err, models.ErrConflict):
		http.Error(w, errorDetail(err, models.ErrConflict), http.StatusConflict)
	default:
		logg.Error(module, "Request failed", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// errorDetail strips the sentinel suffix, leaving e.g. "exceed 300 characters".
func errorDetail(err, sentinel error) string {
	return strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
}
