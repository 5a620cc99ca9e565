package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/spf13/viper"

	"github.com/habitforge/habitforge-web/internal/models"
	"github.com/habitforge/habitforge-web/internal/services"
)

const sessionName = "habitforge-session"

var (
	Store       *sessions.CookieStore
	userService *services.UserService
	validate    = validator.New()
)

func Init(us *services.UserService) {
	Store = sessions.NewCookieStore([]byte(viper.GetString("auth.session_secret")))
	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60, // 7 days
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	userService = us
}

// POST /api/auth/register - Create a new account
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(&req); err != nil {
		http.Error(w, "Name, email and password (min 6 chars) are required", http.StatusBadRequest)
		return
	}

	user, err := userService.CreateUser(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := saveUserSession(w, r, user.ID); err != nil {
		log.Printf("Warning: failed to save session for user %d: %v", user.ID, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Account created successfully!",
		"user":    user,
	})
}

// POST /api/auth/login - Authenticate and open a session
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(&req); err != nil {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := userService.AuthenticateUser(&req)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := saveUserSession(w, r, user.ID); err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

// POST /api/auth/logout - Close the session
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := Store.Get(r, sessionName)
	session.Values["user_id"] = 0
	session.Options.MaxAge = -1
	session.Save(r, w)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
	})
}

// GET /api/auth/me - Return the logged-in user
func MeHandler(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromSession(r)
	if userID == 0 {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	user, err := userService.GetUserByID(userID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

// AuthMiddleware rejects requests without a logged-in session
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserIDFromSession(r) == 0 {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserIDFromSession returns the logged-in user's id, or 0 if not authenticated
func GetUserIDFromSession(r *http.Request) int {
	session, err := Store.Get(r, sessionName)
	if err != nil {
		return 0
	}
	userID, ok := session.Values["user_id"].(int)
	if !ok {
		return 0
	}
	return userID
}

func saveUserSession(w http.ResponseWriter, r *http.Request, userID int) error {
	session, _ := Store.Get(r, sessionName)
	session.Values["user_id"] = userID
	return session.Save(r, w)
}
