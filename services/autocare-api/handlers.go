package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"autocare/pkg/auth"
	"autocare/pkg/diagnosis"
	"autocare/pkg/report"
	"autocare/pkg/vitals"
)

// dataStore is the persistence surface the handlers need. *Store implements
// it; tests substitute an in-memory fake.
type dataStore interface {
	CreateUser(ctx context.Context, username, passwordHash, fullName, email, mobile string) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, fullName, email, mobile string) error
	AddCar(ctx context.Context, userID int64, make, model string, year, odometer int) (int64, error)
	ListCars(ctx context.Context, userID int64) ([]Car, error)
	GetCar(ctx context.Context, userID, carID int64) (*Car, error)
	UpdateCar(ctx context.Context, userID, carID int64, make, model string, year, odometer int) error
	DeleteCar(ctx context.Context, userID, carID int64) error
	ListFleet(ctx context.Context) ([]FleetCar, error)
	SaveContactSubmission(ctx context.Context, name, email, message string) error
	ListContactSubmissions(ctx context.Context) ([]ContactSubmission, error)
}

// Server wires the HTTP API over the store, the diagnosis engine, and auth.
type Server struct {
	store    dataStore
	engine   *diagnosis.Engine
	tokens   *auth.TokenManager
	sessions auth.SessionStore
}

// NewServer builds the API server.
func NewServer(store dataStore, engine *diagnosis.Engine, tokens *auth.TokenManager, sessions auth.SessionStore) *Server {
	return &Server{store: store, engine: engine, tokens: tokens, sessions: sessions}
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/signup", s.handleSignup)
	mux.HandleFunc("/api/login", s.handleLogin)
	mux.HandleFunc("/api/logout", s.requireAuth(s.handleLogout))
	mux.HandleFunc("/api/profile", s.requireAuth(s.handleProfile))
	mux.HandleFunc("/api/cars", s.requireAuth(s.handleCars))
	mux.HandleFunc("/api/cars/", s.requireAuth(s.handleCarByID))
	mux.HandleFunc("/api/contact", s.handleContact)
	mux.HandleFunc("/api/diagnose", s.requireAuth(s.handleDiagnose))
	mux.HandleFunc("/api/report", s.requireAuth(s.handleReport))
	mux.HandleFunc("/api/fleet", s.requireAuth(s.handleFleet))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requireAuth verifies the bearer token and checks that its session is still
// alive, so logout revokes outstanding tokens immediately.
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, *auth.Claims)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := s.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if _, err := s.sessions.Get(r.Context(), claims.SessionID); err != nil {
			writeError(w, http.StatusUnauthorized, "session expired")
			return
		}
		next(w, r, claims)
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process password")
		return
	}
	id, err := s.store.CreateUser(r.Context(), req.Username, hash, req.FullName, req.Email, req.Mobile)
	if errors.Is(err, ErrUserExists) {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	if err != nil {
		log.Printf("[api] create user: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"user_id": id, "username": req.Username})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), req.Username)
	if errors.Is(err, ErrUserNotFound) || (err == nil && !auth.CheckPassword(user.PasswordHash, req.Password)) {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		log.Printf("[api] login lookup: %v", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	sess, err := s.sessions.Create(r.Context(), user.ID, user.Username)
	if err != nil {
		log.Printf("[api] create session: %v", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	token, expiresAt, err := s.tokens.Generate(user.ID, user.Username, sess.ID)
	if err != nil {
		log.Printf("[api] issue token: %v", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_at": expiresAt,
		"full_name":  user.FullName,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.sessions.Delete(r.Context(), claims.SessionID); err != nil {
		log.Printf("[api] delete session: %v", err)
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

type profileUpdateRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	switch r.Method {
	case http.MethodGet:
		user, err := s.store.GetUserByUsername(r.Context(), claims.Username)
		if err != nil {
			log.Printf("[api] load profile: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to load profile")
			return
		}
		writeJSON(w, http.StatusOK, user)
	case http.MethodPut:
		var req profileUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.store.UpdateProfile(r.Context(), claims.UserID, req.FullName, req.Email, req.Mobile); err != nil {
			log.Printf("[api] update profile: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to update profile")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type carRequest struct {
	Make     string `json:"make"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	Odometer int    `json:"odometer"`
}

func (s *Server) handleCars(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	switch r.Method {
	case http.MethodGet:
		cars, err := s.store.ListCars(r.Context(), claims.UserID)
		if err != nil {
			log.Printf("[api] list cars: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to list cars")
			return
		}
		writeJSON(w, http.StatusOK, cars)
	case http.MethodPost:
		var req carRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Make == "" || req.Model == "" {
			writeError(w, http.StatusBadRequest, "make and model are required")
			return
		}
		id, err := s.store.AddCar(r.Context(), claims.UserID, req.Make, req.Model, req.Year, req.Odometer)
		if err != nil {
			log.Printf("[api] add car: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to add car")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int64{"car_id": id})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCarByID(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	carID, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/cars/"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid car id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		car, err := s.store.GetCar(r.Context(), claims.UserID, carID)
		if errors.Is(err, ErrCarNotFound) {
			writeError(w, http.StatusNotFound, "car not found")
			return
		}
		if err != nil {
			log.Printf("[api] get car: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to load car")
			return
		}
		writeJSON(w, http.StatusOK, car)
	case http.MethodPut:
		var req carRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		err := s.store.UpdateCar(r.Context(), claims.UserID, carID, req.Make, req.Model, req.Year, req.Odometer)
		if errors.Is(err, ErrCarNotFound) {
			writeError(w, http.StatusNotFound, "car not found")
			return
		}
		if err != nil {
			log.Printf("[api] update car: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to update car")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	case http.MethodDelete:
		err := s.store.DeleteCar(r.Context(), claims.UserID, carID)
		if errors.Is(err, ErrCarNotFound) {
			writeError(w, http.StatusNotFound, "car not found")
			return
		}
		if err != nil {
			log.Printf("[api] delete car: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to delete car")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// handleContact accepts anonymous submissions; listing them requires auth.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req contactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Name == "" || req.Email == "" || req.Message == "" {
			writeError(w, http.StatusBadRequest, "name, email, and message are required")
			return
		}
		if err := s.store.SaveContactSubmission(r.Context(), req.Name, req.Email, req.Message); err != nil {
			log.Printf("[api] save contact submission: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to submit message")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "submitted"})
	case http.MethodGet:
		s.requireAuth(func(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
			subs, err := s.store.ListContactSubmissions(r.Context())
			if err != nil {
				log.Printf("[api] list contact submissions: %v", err)
				writeError(w, http.StatusInternalServerError, "failed to list submissions")
				return
			}
			writeJSON(w, http.StatusOK, subs)
		})(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type diagnoseRequest struct {
	Vitals vitals.Reading `json:"vitals"`
}

type diagnoseResponse struct {
	Verdict        diagnosis.Verdict `json:"verdict"`
	ModelAvailable bool              `json:"model_available"`
}

func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req diagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	verdict := s.engine.RunDiagnosis(r.Context(), &req.Vitals)
	writeJSON(w, http.StatusOK, diagnoseResponse{Verdict: verdict, ModelAvailable: s.engine.ModelAvailable()})
}

type reportRequest struct {
	CarID  int64          `json:"car_id"`
	Vitals vitals.Reading `json:"vitals"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	car, err := s.store.GetCar(r.Context(), claims.UserID, req.CarID)
	if errors.Is(err, ErrCarNotFound) {
		writeError(w, http.StatusNotFound, "car not found")
		return
	}
	if err != nil {
		log.Printf("[api] load car for report: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	user, err := s.store.GetUserByUsername(r.Context(), claims.Username)
	if err != nil {
		log.Printf("[api] load user for report: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	verdict := s.engine.RunDiagnosis(r.Context(), &req.Vitals)
	now := time.Now()
	carInfo := report.CarInfo{Make: car.Make, Model: car.Model, Year: car.Year, Odometer: car.Odometer}
	pdf, err := report.Generate(report.Data{
		UserName:    user.FullName,
		UserEmail:   user.Email,
		Car:         carInfo,
		Reading:     &req.Vitals,
		Verdict:     verdict,
		GeneratedAt: now,
	})
	if err != nil {
		log.Printf("[api] render report: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(carInfo, now)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Printf("[api] write report: %v", err)
	}
}

func (s *Server) handleFleet(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	fleet, err := s.store.ListFleet(r.Context())
	if err != nil {
		log.Printf("[api] list fleet: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load fleet")
		return
	}
	writeJSON(w, http.StatusOK, buildFleetSnapshot(fleet))
}
