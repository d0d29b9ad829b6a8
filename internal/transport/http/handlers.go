package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"quizhub/internal/app"
	"quizhub/internal/auth"
	"quizhub/internal/domain"
)

// API wires the quiz and credential use cases onto an HTTP mux.
type API struct {
	quizzes *app.QuizService
	auth    *auth.Service
}

func NewAPI(quizzes *app.QuizService, authService *auth.Service) *API {
	return &API{quizzes: quizzes, auth: authService}
}

// Register mounts all REST routes.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /register", a.handleRegister)
	mux.HandleFunc("POST /login", a.handleLogin)
	mux.HandleFunc("GET /profile", a.requireAuth(a.handleProfile))

	mux.HandleFunc("GET /api/quizzes", a.requireAuth(a.handleListQuizzes))
	mux.HandleFunc("POST /api/quizzes", a.requireAuth(a.handleCreateQuiz))
	mux.HandleFunc("GET /api/quizzes/{id}", a.handleGetQuiz)
	mux.HandleFunc("DELETE /api/quizzes/{id}", a.handleDeleteQuiz)

	mux.HandleFunc("POST /api/quizzes/{id}/submit", a.requireAuth(a.handleSubmit))
	mux.HandleFunc("POST /submit-quiz", a.handleSubmitAnonymous)

	mux.HandleFunc("GET /api/leaderboard", a.handleLeaderboard)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	if _, err := a.auth.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		serverError(w, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "user registered successfully"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := a.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		serverError(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

func (a *API) handleProfile(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := a.auth.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		serverError(w, "profile", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": map[string]string{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	}})
}

func (a *API) handleListQuizzes(w http.ResponseWriter, r *http.Request, userID string) {
	quizzes, err := a.quizzes.ListQuizzesByCreator(r.Context(), userID)
	if err != nil {
		serverError(w, "list quizzes", err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (a *API) handleCreateQuiz(w http.ResponseWriter, r *http.Request, userID string) {
	var req app.CreateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quiz, err := a.quizzes.CreateQuiz(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuiz) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		serverError(w, "create quiz", err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (a *API) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.quizzes.GetQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		serverError(w, "get quiz", err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (a *API) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := a.quizzes.DeleteQuiz(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		serverError(w, "delete quiz", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "quiz deleted successfully"})
}

type submitRequest struct {
	Answers []string `json:"answers"`
}

func (a *API) handleSubmit(w http.ResponseWriter, r *http.Request, userID string) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	correct, err := a.quizzes.SubmitQuiz(r.Context(), r.PathValue("id"), userID, req.Answers)
	if err != nil {
		submissionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "quiz submitted", "correctAnswers": correct})
}

type anonymousSubmitRequest struct {
	QuizID  string   `json:"quizId"`
	UserID  string   `json:"userId"`
	Answers []string `json:"answers"`
}

func (a *API) handleSubmitAnonymous(w http.ResponseWriter, r *http.Request) {
	var req anonymousSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	correct, err := a.quizzes.SubmitQuizAnonymous(r.Context(), req.QuizID, req.UserID, req.Answers)
	if err != nil {
		submissionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "quiz submitted", "correctCount": correct})
}

func (a *API) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := a.quizzes.GetLeaderboard(r.Context())
	if err != nil {
		serverError(w, "leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type authedHandler func(w http.ResponseWriter, r *http.Request, userID string)

// requireAuth resolves the bearer token to a user ID or rejects with 401.
func (a *API) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		userID, err := a.auth.ParseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r, userID)
	}
}

func submissionError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrQuizNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	serverError(w, "submit quiz", err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func serverError(w http.ResponseWriter, op string, err error) {
	log.Printf("%s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
