package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"scolara/internal/profile"
	"scolara/internal/transport/http/shared"
	id "scolara/pkg/domain"
	dErrors "scolara/pkg/domain-errors"
)

// Authenticator verifies a credential pair against the credential store.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (id.UserID, error)
}

// ProfileReader resolves the profile behind an authenticated identity.
type ProfileReader interface {
	FindByID(ctx context.Context, userID id.UserID) (*profile.Profile, error)
}

// TokenIssuer mints access tokens for authenticated identities.
type TokenIssuer interface {
	GenerateToken(userID id.UserID, role string, expiresIn time.Duration) (string, error)
}

// AuthHandler exchanges credentials for an access token.
type AuthHandler struct {
	logger   *slog.Logger
	creds    Authenticator
	profiles ProfileReader
	tokens   TokenIssuer
	tokenTTL time.Duration
}

func NewAuthHandler(creds Authenticator, profiles ProfileReader, tokens TokenIssuer, tokenTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		creds:    creds,
		profiles: profiles,
		tokens:   tokens,
		tokenTTL: tokenTTL,
	}
}

// Register registers the login route. Login is the one unauthenticated
// endpoint besides health and metrics.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "email and password are required"))
		return
	}

	userID, err := h.creds.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		// Wrong password and unknown email are indistinguishable on the wire.
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
		return
	}

	p, err := h.profiles.FindByID(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "authenticated identity has no profile", "user_id", userID.String(), "error", err)
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
		return
	}
	if !p.Active {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "account is deactivated"))
		return
	}

	token, err := h.tokens.GenerateToken(userID, string(p.Role), h.tokenTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "token generation failed", "user_id", userID.String(), "error", err)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "could not issue token"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.tokenTTL.Seconds()),
	})
}
