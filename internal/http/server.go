// Package http serves the web UI: dashboard, account and transaction
// management, the monthly entries editor, exports, and auth pages.
package http

import (
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"networth/internal/auth"
	"networth/internal/log"
	"networth/internal/report"
	"networth/internal/storage"
	appweb "networth/web"
)

type Server struct {
	http.Server

	repo      *storage.Repository
	auth      *auth.Service
	reports   *report.Service
	templates *template.Template
	logger    *log.Logger

	signupEnabled bool
}

// NewServer configures routes and templates, returning a ready-to-run
// server.
func NewServer(addr string, repo *storage.Repository, authSvc *auth.Service, reports *report.Service, logger *log.Logger, signupEnabled bool) *Server {
	s := &Server{
		repo:          repo,
		auth:          authSvc,
		reports:       reports,
		logger:        logger.WithComponent(log.ComponentHTTP),
		signupEnabled: signupEnabled,
	}

	s.templates = template.Must(template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html"))

	r := mux.NewRouter()
	r.Use(s.withRequestID, s.withLogging, s.withSecurityHeaders)

	// Static assets from the embedded FS.
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.PathPrefix("/static/").Handler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, req)
		}))
	} else {
		s.logger.Warn("failed to mount embedded static FS", log.FieldError, err)
	}

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	r.HandleFunc("/landing", s.handleStaticPage("landing.html")).Methods(http.MethodGet)
	r.HandleFunc("/terms", s.handleStaticPage("terms.html")).Methods(http.MethodGet)
	r.HandleFunc("/privacy", s.handleStaticPage("privacy.html")).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/signup", s.handleSignupPage).Methods(http.MethodGet)
	r.HandleFunc("/signup", s.handleSignup).Methods(http.MethodPost)

	// Everything below requires a session.
	p := r.PathPrefix("/").Subrouter()
	p.Use(s.requireAuth)

	p.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	p.HandleFunc("/api/chart-data", s.handleChartData).Methods(http.MethodGet)

	p.HandleFunc("/accounts", s.handleAccountList).Methods(http.MethodGet)
	p.HandleFunc("/accounts/new", s.handleAccountForm).Methods(http.MethodGet)
	p.HandleFunc("/accounts/new", s.handleAccountCreate).Methods(http.MethodPost)
	p.HandleFunc("/accounts/{id:[0-9]+}", s.handleAccountDetail).Methods(http.MethodGet)
	p.HandleFunc("/accounts/{id:[0-9]+}/edit", s.handleAccountForm).Methods(http.MethodGet)
	p.HandleFunc("/accounts/{id:[0-9]+}/edit", s.handleAccountUpdate).Methods(http.MethodPost)
	p.HandleFunc("/accounts/{id:[0-9]+}/delete", s.handleAccountDelete).Methods(http.MethodPost)

	p.HandleFunc("/entries", s.handleEntriesPage).Methods(http.MethodGet)
	p.HandleFunc("/entries", s.handleEntriesSave).Methods(http.MethodPost)

	p.HandleFunc("/transactions", s.handleTransactionList).Methods(http.MethodGet)
	p.HandleFunc("/transactions/new", s.handleTransactionForm).Methods(http.MethodGet)
	p.HandleFunc("/transactions/new", s.handleTransactionCreate).Methods(http.MethodPost)
	p.HandleFunc("/transactions/{id:[0-9]+}/edit", s.handleTransactionForm).Methods(http.MethodGet)
	p.HandleFunc("/transactions/{id:[0-9]+}/edit", s.handleTransactionUpdate).Methods(http.MethodPost)
	p.HandleFunc("/transactions/{id:[0-9]+}/delete", s.handleTransactionDelete).Methods(http.MethodPost)

	p.HandleFunc("/settings", s.handleSettingsPage).Methods(http.MethodGet)
	p.HandleFunc("/settings", s.handleSettingsSave).Methods(http.MethodPost)
	p.HandleFunc("/data", s.handleDataPage).Methods(http.MethodGet)
	p.HandleFunc("/data", s.handleDataAction).Methods(http.MethodPost)

	p.HandleFunc("/export/{format}/{kind}", s.handleExport).Methods(http.MethodGet)
	p.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "readiness check failed", log.FieldError, err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
