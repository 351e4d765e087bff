package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/GeniusB-ui/mymoney-v1.0.0/internal/auth"
	"github.com/GeniusB-ui/mymoney-v1.0.0/internal/models"
	"github.com/GeniusB-ui/mymoney-v1.0.0/internal/storage"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// AccountContextKey is the context key for the authenticated account.
	AccountContextKey contextKey = "account"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	// FlashCookieName is the name of the single-use notification cookie.
	FlashCookieName = "flash"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db              *storage.DB
	templateDir     string
	secureCookie    bool
	sessionDuration time.Duration
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *storage.DB, templateDir string, secureCookie bool, sessionDuration time.Duration) *Handlers {
	return &Handlers{
		db:              db,
		templateDir:     templateDir,
		secureCookie:    secureCookie,
		sessionDuration: sessionDuration,
	}
}

// GetAccountFromContext retrieves the authenticated account from request context.
func GetAccountFromContext(r *http.Request) *models.Account {
	if account, ok := r.Context().Value(AccountContextKey).(*models.Account); ok {
		return account
	}
	return nil
}

// AuthMiddleware wraps handlers to require authentication. Requests without
// a valid session are sent to the login page with a warning notification.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			h.setFlash(w, "warning", "Please log in first")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		account, err := h.db.ValidateSession(cookie.Value)
		if err != nil {
			// Invalid or expired session, clear the cookie
			h.clearSessionCookie(w)
			h.setFlash(w, "warning", "Please log in first")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), AccountContextKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Home redirects to the dashboard when logged in, otherwise to the login page.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := h.db.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/index", http.StatusFound)
			return
		}
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// LoginViewModel holds data for the login page.
type LoginViewModel struct {
	Error string
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := h.db.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/index", http.StatusFound)
			return
		}
	}
	h.render(w, r, "login.html", LoginViewModel{})
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "login.html", LoginViewModel{Error: "Invalid form submission"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		h.render(w, r, "login.html", LoginViewModel{Error: "Username and password are required"})
		return
	}

	account, err := h.db.GetAccountByUsername(username)
	if err != nil || !auth.CheckPassword(password, account.PasswordHash) {
		h.render(w, r, "login.html", LoginViewModel{Error: "Invalid username or password"})
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		log.Printf("Failed to generate session token: %v", err)
		h.render(w, r, "login.html", LoginViewModel{Error: "An error occurred. Please try again."})
		return
	}

	expiresAt := time.Now().Add(h.sessionDuration)
	if err := h.db.CreateSession(token, account.ID, expiresAt); err != nil {
		log.Printf("Failed to create session: %v", err)
		h.render(w, r, "login.html", LoginViewModel{Error: "An error occurred. Please try again."})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	h.setFlash(w, "success", "Welcome, "+account.Fullname+"!")
	http.Redirect(w, r, "/index", http.StatusFound)
}

// RegisterViewModel holds data for the registration page.
type RegisterViewModel struct {
	Error string
}

// RegisterForm renders the registration page.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", RegisterViewModel{})
}

// Register handles the registration form submission. A duplicate username
// keeps the user on the form; success redirects to login without
// authenticating.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "register.html", RegisterViewModel{Error: "Invalid form submission"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	fullname := strings.TrimSpace(r.FormValue("fullname"))

	if username == "" || password == "" || fullname == "" {
		h.render(w, r, "register.html", RegisterViewModel{Error: "All fields are required"})
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		h.render(w, r, "register.html", RegisterViewModel{Error: "An error occurred. Please try again."})
		return
	}

	if _, err := h.db.CreateAccount(username, hash, fullname); err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			h.render(w, r, "register.html", RegisterViewModel{Error: "Username already exists"})
			return
		}
		log.Printf("Failed to create account: %v", err)
		h.render(w, r, "register.html", RegisterViewModel{Error: "An error occurred. Please try again."})
		return
	}

	h.setFlash(w, "success", "Registration successful! Please log in")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Logout clears the session. It is idempotent and callable without one.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.db.DeleteSession(cookie.Value); err != nil {
			log.Printf("Failed to delete session: %v", err)
		}
	}
	h.clearSessionCookie(w)
	h.setFlash(w, "info", "You have been logged out")
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// Flash is a single-use notification shown on the next rendered view.
type Flash struct {
	Category string
	Message  string
}

// setFlash queues a notification for the next rendered page.
func (h *Handlers) setFlash(w http.ResponseWriter, category, message string) {
	value := base64.URLEncoding.EncodeToString([]byte(category + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash consumes the pending notification, if any.
func (h *Handlers) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	category, message, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return nil
	}
	return &Flash{Category: category, Message: message}
}

// Page wraps view data with the bits every template needs.
type Page struct {
	Flash   *Flash
	Account *models.Account
	Data    any
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, viewName string, data any) {
	tmpl, err := template.ParseFiles(filepath.Join(h.templateDir, "base.html"), filepath.Join(h.templateDir, viewName))
	if err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	page := Page{
		Flash:   h.popFlash(w, r),
		Account: GetAccountFromContext(r),
		Data:    data,
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", page); err != nil {
		log.Printf("Template execution error: %v", err)
	}
}
