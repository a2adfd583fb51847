package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/UtiliTrack/UT-Backend/internal/config"
	"github.com/UtiliTrack/UT-Backend/internal/db"
	"github.com/UtiliTrack/UT-Backend/internal/utils"
	"github.com/lib/pq"
)

type SessionFetcher interface {
	FindSessionByID(id string) (utils.SessionData, error)
}

func SessionMiddleware(fetcher SessionFetcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("session_id")
			if err != nil {
				http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
				return
			}

			session, err := fetcher.FindSessionByID(cookie.Value)
			if err != nil {
				http.Error(w, "Couldn't find session", http.StatusUnauthorized)
				return
			}

			if session.ExpiresAt.Before(time.Now()) {
				http.Error(w, "Session expired", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), utils.ContextUserIDKey, session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CORSMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	for _, origin := range config.Get().AllowedOrigins {
		allowed[origin] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Echo the origin back only if it's on the allow-list
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin") // important for caches
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods",
				"GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers",
				"Content-Type, Authorization")
		}

		w.Header().Set("Access-Control-Expose-Headers", "Server-Timing, Retry-After, Cache-Control")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Role tiers. A tier is the set of roles allowed to perform an action:
// supervisors mark overtime/double duty, manager tier and up decide them.
var (
	ManagerTier    = []string{"manager", "general_manager", "ceo", "super_admin"}
	SupervisorTier = []string{"supervisor", "manager", "general_manager", "ceo", "super_admin"}
	AdminTier      = []string{"super_admin"}
)

type roleRow struct {
	UserID string `gorm:"primaryKey"`
	Role   string
}

func (roleRow) TableName() string { return "app_auth.users" }

// RequireRole gates the request on the caller's role being in the given set.
// Must run after SessionMiddleware so the user ID is already in context.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
				return
			}

			var user roleRow
			err := db.DB.Raw(
				`SELECT user_id, role FROM app_auth.users WHERE user_id = ? AND role = ANY(?) AND is_active`,
				userID, pq.Array(roles),
			).Scan(&user).Error
			if err != nil {
				http.Error(w, "Role lookup failed", http.StatusServiceUnavailable)
				return
			}
			if user.UserID == "" {
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), utils.ContextRoleKey, user.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
