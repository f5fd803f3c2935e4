package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/softkom/site-manager/internal/apisrv/rest"
	"github.com/softkom/site-manager/internal/auth/jwt"
	"github.com/softkom/site-manager/internal/auth/pwhash"
	"github.com/softkom/site-manager/internal/dependency"
)

// Server exposes login and admin-user management.
type Server struct {
	adminRepository dependency.Admin
	pwhash          *pwhash.PasswordHasher
	JwtAuth         *jwtauth.JWTAuth
	jwtTTL          time.Duration
	c               *Config
	masterHash      string
}

// Config contains the configuration for the auth server.
type Config struct {
	JWTSecret                string `mapstructure:"jwtSecret"`
	MasterPassword           string `mapstructure:"masterPassword"`
	PasswordHasherSaltSize   int    `mapstructure:"passwordHasherSaltSize"`
	PasswordHasherIterations int    `mapstructure:"passwordHasherIterations"`
	JWTTTL                   string `mapstructure:"jwtttl"`
}

// New creates a new auth server.
func New(c *Config, ar dependency.Admin) (*Server, error) {
	ph, err := pwhash.New(c.PasswordHasherSaltSize, c.PasswordHasherIterations)
	if err != nil {
		return nil, err
	}
	hash, err := ph.HashPassword(c.MasterPassword)
	if err != nil {
		return nil, err
	}
	if err := ph.Validate(c.MasterPassword, hash); err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(c.JWTTTL)
	if err != nil {
		return nil, err
	}
	s := &Server{
		adminRepository: ar,
		pwhash:          ph,
		JwtAuth:         jwtauth.New("HS256", []byte(c.JWTSecret), nil),
		c:               c,
		jwtTTL:          ttl,
		masterHash:      hash,
	}
	return s, nil
}

// Routes mounts the auth endpoints.
func (s *Server) Routes(r chi.Router) {
	r.Post("/login", s.Login)
	r.Post("/users", s.CreateUser)
	r.Delete("/users/{username}", s.DeleteUser)
	r.Post("/users/{username}/password", s.ChangePassword)

	r.Group(func(r chi.Router) {
		r.Use(s.WithAuth)
		r.Get("/users", s.ListUsers)
		r.Get("/users/{username}", s.GetUser)
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AuthToken string `json:"authToken"`
}

// Login returns an auth token for a valid username and password pair.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	username := strings.ToLower(req.Username)

	pwHash, err := s.adminRepository.PasswordHashByUsername(r.Context(), username)
	if err != nil {
		rest.WriteMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if err := s.pwhash.Validate(req.Password, pwHash); err != nil {
		rest.WriteMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	token, err := jwt.NewTokenWithSubject(s.JwtAuth, s.jwtTTL, username)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, tokenResponse{AuthToken: token})
}

type createUserRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	MasterPassword string `json:"masterPassword"`
}

// CreateUser creates a new admin user, gated by the master password.
func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.pwhash.Validate(req.MasterPassword, s.masterHash); err != nil {
		rest.WriteMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	username := strings.ToLower(req.Username)
	if username == "" || req.Password == "" {
		rest.WriteMessage(w, http.StatusBadRequest, "username and password are required")
		return
	}

	pwHash, err := s.pwhash.HashPassword(req.Password)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	if err := s.adminRepository.AddAdmin(r.Context(), username, pwHash); err != nil {
		rest.WriteError(w, err)
		return
	}

	token, err := jwt.NewTokenWithSubject(s.JwtAuth, s.jwtTTL, username)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, tokenResponse{AuthToken: token})
}

type deleteUserRequest struct {
	MasterPassword string `json:"masterPassword"`
}

// DeleteUser deletes an admin user, gated by the master password.
func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.pwhash.Validate(req.MasterPassword, s.masterHash); err != nil {
		rest.WriteMessage(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	username := strings.ToLower(chi.URLParam(r, "username"))
	if err := s.adminRepository.DeleteAdmin(r.Context(), username); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "user deleted")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword changes a user's password. The current password or the
// master password must be provided.
func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	username := strings.ToLower(chi.URLParam(r, "username"))

	currentHash, err := s.adminRepository.PasswordHashByUsername(r.Context(), username)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	if err := s.pwhash.Validate(req.CurrentPassword, s.masterHash); err != nil {
		if err := s.pwhash.Validate(req.CurrentPassword, currentHash); err != nil {
			rest.WriteMessage(w, http.StatusUnauthorized, "not authenticated")
			return
		}
	}
	if req.NewPassword == "" {
		rest.WriteMessage(w, http.StatusBadRequest, "new password is required")
		return
	}

	newHash, err := s.pwhash.HashPassword(req.NewPassword)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	if err := s.adminRepository.ChangePassword(r.Context(), username, newHash); err != nil {
		rest.WriteError(w, err)
		return
	}

	token, err := jwt.NewTokenWithSubject(s.JwtAuth, s.jwtTTL, username)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, tokenResponse{AuthToken: token})
}

// ListUsers returns the admin accounts. Password hashes never serialize.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	admins, err := s.adminRepository.ListAdmins(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, admins)
}

// GetUser returns a single admin account.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	username := strings.ToLower(chi.URLParam(r, "username"))
	admin, err := s.adminRepository.GetAdminByUsername(r.Context(), username)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, admin)
}

// WithAuth middleware rejects requests without a valid bearer token.
func (s *Server) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if _, err := jwt.VerifyToken(s.JwtAuth, token); err != nil {
			rest.WriteMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
