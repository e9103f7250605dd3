package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mind-engage/growthreport/internal/apperr"
	"github.com/mind-engage/growthreport/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	hmac      []byte
	ttl       time.Duration
	adminUser string
	adminHash []byte
	now       func() time.Time
}

type Option func(*AuthService)

func WithTTL(d time.Duration) Option {
	return func(a *AuthService) {
		if d > 0 {
			a.ttl = d
		}
	}
}

// WithAdmin enables the admin login with a bcrypt password hash.
func WithAdmin(user, passHash string) Option {
	return func(a *AuthService) { a.adminUser, a.adminHash = user, []byte(passHash) }
}

func NewAuthService(secret string, opts ...Option) *AuthService {
	a := &AuthService{hmac: []byte(secret), ttl: 8 * time.Hour, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	return a
}

type Claims struct {
	Sub     string `json:"sub"`
	Role    string `json:"role"` // "teacher", "student" or "admin"
	APIKey  string `json:"apiKey,omitempty"`
	Counsel string `json:"counselId,omitempty"`
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(c Claims) (string, error) {
	now := a.now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    "growthreport",
		Subject:   c.Sub,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &c)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

type tokenResponse struct {
	AccessToken string   `json:"access_token"`
	Role        string   `json:"role"`
	CounselID   string   `json:"counselId,omitempty"`
	Permissions []string `json:"permissions"`
}

func writeToken(w http.ResponseWriter, tok string, c Claims) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokenResponse{
		AccessToken: tok,
		Role:        c.Role,
		CounselID:   c.Counsel,
		Permissions: rbac.Permissions(c.Role),
	})
}

// POST /auth/teacher/login  { "apiKey": "..." }
func TeacherLoginHandler(a *AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			APIKey string `json:"apiKey"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		key := strings.TrimSpace(req.APIKey)
		if key == "" {
			http.Error(w, "apiKey required", http.StatusBadRequest)
			return
		}
		c := Claims{Sub: "teacher", Role: rbac.RoleTeacher, APIKey: key}
		tok, err := a.IssueJWT(c)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		writeToken(w, tok, c)
	}
}

// CounselExists reports apperr.ErrNotFound for an unknown counsel id.
type CounselExists func(ctx context.Context, counselID string) error

// POST /auth/student/login  { "counselId": "...", "studentCode": "..." }
func StudentLoginHandler(a *AuthService, exists CounselExists) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CounselID   string `json:"counselId"`
			StudentCode string `json:"studentCode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		code := strings.TrimSpace(req.StudentCode)
		if !apperr.ValidStudentCode(code) {
			http.Error(w, "invalid student code", http.StatusBadRequest)
			return
		}
		if err := exists(r.Context(), req.CounselID); err != nil {
			if apperr.IsNotFound(err) {
				http.Error(w, "counsel not found", http.StatusNotFound)
				return
			}
			http.Error(w, "counsel lookup failed", http.StatusInternalServerError)
			return
		}
		c := Claims{Sub: code, Role: rbac.RoleStudent, Counsel: req.CounselID}
		tok, err := a.IssueJWT(c)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		writeToken(w, tok, c)
	}
}

// POST /auth/admin/login  { "username": "...", "password": "..." }
func AdminLoginHandler(a *AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if a.adminUser == "" || req.Username != a.adminUser ||
			bcrypt.CompareHashAndPassword(a.adminHash, []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		c := Claims{Sub: req.Username, Role: rbac.RoleAdmin}
		tok, err := a.IssueJWT(c)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		writeToken(w, tok, c)
	}
}

// JWTMiddleware verifies the bearer token and puts subject, role, API key
// and counsel id on the request context.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			c, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil || c == nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := WithSubject(r.Context(), c.Sub)
			ctx = rbac.WithRole(ctx, c.Role)
			if c.APIKey != "" {
				ctx = WithAPIKey(ctx, c.APIKey)
			}
			if c.Counsel != "" {
				ctx = WithCounsel(ctx, c.Counsel)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
