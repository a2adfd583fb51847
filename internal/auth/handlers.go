package auth

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/UtiliTrack/UT-Backend/internal/db"
	"github.com/UtiliTrack/UT-Backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

// Per-IP limiter for login attempts: 10 per minute with a burst of 5.
var (
	loginLimiters   = make(map[string]*rate.Limiter)
	loginLimitersMu sync.Mutex
)

func loginLimiter(ip string) *rate.Limiter {
	loginLimitersMu.Lock()
	defer loginLimitersMu.Unlock()

	lim, ok := loginLimiters[ip]
	if !ok {
		lim = rate.NewLimiter(rate.Every(6*time.Second), 5)
		loginLimiters[ip] = lim
	}
	return lim
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var user User

	err := json.NewDecoder(r.Body).Decode(&user)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	if user.Username == "" || user.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	// Check if username is taken
	var existing User
	err = db.DB.First(&existing, "username = ?", user.Username).Error
	if err == nil {
		utils.RespondError(w, http.StatusConflict, "Username already taken")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Server error hashing password")
		return
	}
	user.HashedPassword = string(hashed)
	user.UserID = utils.GenerateUUID()
	user.Password = ""
	user.IsActive = true

	if err := db.DB.Create(&user).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Failed to register user")
		return
	}

	utils.RespondSuccess(w, http.StatusCreated, map[string]string{
		"user_id":  user.UserID,
		"username": user.Username,
		"role":     user.Role,
	})
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !loginLimiter(clientIP(r)).Allow() {
		w.Header().Set("Retry-After", "60")
		utils.RespondError(w, http.StatusTooManyRequests, "Too many login attempts")
		return
	}

	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	var user User
	err := db.DB.First(&user, "username = ? AND is_active", input.Username).Error
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(input.Password))
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	sessionID := utils.GenerateUUID()
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	// One session row per user; logging in again rotates the session ID.
	var existing Session
	db.DB.Where("user_id = ?", user.UserID).First(&existing)
	if existing.UserID != "" {
		db.DB.Model(&existing).Updates(Session{
			SessionID: sessionID,
			ExpiresAt: time.Now().Add(12 * time.Hour),
		})
	} else {
		db.DB.Create(&Session{
			SessionID: sessionID,
			UserID:    user.UserID,
			ExpiresAt: time.Now().Add(12 * time.Hour),
		})
	}

	utils.RespondSuccess(w, http.StatusOK, map[string]string{
		"user_id": user.UserID,
		"role":    user.Role,
	})
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("session_id")
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Couldn't find cookie")
		return
	}

	var session Session
	err = db.DB.First(&session, "session_id = ?", cookie.Value).Error
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Couldn't find session")
		return
	}

	db.DB.Delete(&session)

	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	utils.RespondSuccess(w, http.StatusOK, "Logged out")
}

func MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Missing user ID in context")
		return
	}

	var user User
	if err := db.DB.First(&user, "user_id = ?", userID).Error; err != nil {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, user)
}

func ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	var users []User
	q := db.DB.Order("username")

	if role := r.URL.Query().Get("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	// Soft-deleted accounts stay out unless explicitly asked for.
	if r.URL.Query().Get("include_inactive") != "true" {
		q = q.Where("is_active")
	}

	if err := q.Find(&users).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "DB error: "+err.Error())
		return
	}

	utils.RespondSuccess(w, http.StatusOK, users)
}

// DeactivateUserHandler soft-deletes an account. Users are never hard-deleted
// because attendance history references them.
func DeactivateUserHandler(w http.ResponseWriter, r *http.Request, userID string) {
	var user User
	if err := db.DB.First(&user, "user_id = ?", userID).Error; err != nil {
		utils.RespondError(w, http.StatusNotFound, "User not found")
		return
	}

	if err := db.DB.Model(&user).Update("is_active", false).Error; err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "Failed to deactivate user")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, "User deactivated")
}
