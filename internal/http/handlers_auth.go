package http

import (
	"errors"
	"net/http"

	"networth/internal/auth"
)

type loginData struct {
	Error    string
	Username string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login.html", "Log In", loginData{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username := formValue(r, "username")
	password := r.FormValue("password")

	token, err := s.auth.Login(r.Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, r, "login.html", "Log In", loginData{
			Error:    "Invalid username or password.",
			Username: username,
		})
		return
	}
	if err != nil {
		s.serverError(w, r, "login failed", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.auth.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.InfoContext(r.Context(), "user logged in", "username", username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type signupData struct {
	Error    string
	Username string
	Email    string
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	if !s.signupEnabled {
		s.render(w, r, "signup_disabled.html", "Sign Up", nil)
		return
	}
	s.render(w, r, "signup.html", "Sign Up", signupData{})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if !s.signupEnabled {
		s.render(w, r, "signup_disabled.html", "Sign Up", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username := formValue(r, "username")
	email := formValue(r, "email")

	_, err := s.auth.Register(r.Context(), username, email, r.FormValue("password"))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "signup.html", "Sign Up", signupData{
			Error:    err.Error(),
			Username: username,
			Email:    email,
		})
		return
	}
	s.logger.InfoContext(r.Context(), "user signed up", "username", username)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleStaticPage(tmpl string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, tmpl, "", nil)
	}
}
