package handler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/wadjakorntonsri/popular-clicks/pkg/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	sessionCookie = "auth_token"
	stateCookie   = "oauthstate"

	// ReportsScope grants the report and link admin API.
	ReportsScope = "reports"

	sessionTTL      = 24 * time.Hour
	googleUserInfo  = "https://www.googleapis.com/oauth2/v2/userinfo"
	stateCookieLife = 20 * time.Minute
)

var errMissingScope = errors.New("session lacks the reports scope")

// AdminClaims is the session carried in the auth cookie.
type AdminClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// IssueAdminToken signs a reports session for email.
func IssueAdminToken(secret []byte, email string, expires time.Time) (string, error) {
	claims := &AdminClaims{
		Scope: ReportsScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseAdminToken(secret []byte, raw string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Scope != ReportsScope {
		return nil, errMissingScope
	}
	return claims, nil
}

// AuthHandler signs admins in with Google and hands out report sessions.
type AuthHandler struct {
	oauthConfig   *oauth2.Config
	userInfoURL   string
	jwtSecret     []byte
	frontendURL   string
	allowedEmails []string
	secureCookies bool
	logger        zerolog.Logger
}

type googleUser struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
}

func NewAuthHandler(cfg *config.Config, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL:   googleUserInfo,
		jwtSecret:     []byte(cfg.JWTSecret),
		frontendURL:   cfg.FrontendURL,
		allowedEmails: cfg.AllowedEmails,
		secureCookies: cfg.AppEnv == "production",
		logger:        logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := h.setStateCookie(w)
	http.Redirect(w, r, h.oauthConfig.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state, err := r.Cookie(stateCookie)
	if err != nil {
		h.logger.Warn().Err(err).Msg("callback: missing oauth state cookie")
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}
	if r.FormValue("state") != state.Value {
		h.logger.Warn().Msg("callback: oauth state mismatch")
		http.Error(w, "invalid oauth state", http.StatusBadRequest)
		return
	}

	user, err := h.fetchUser(r)
	if err != nil {
		h.logger.Error().Err(err).Msg("callback: sign-in failed")
		http.Error(w, "sign-in failed", http.StatusBadGateway)
		return
	}
	if !user.VerifiedEmail || (len(h.allowedEmails) > 0 && !slices.Contains(h.allowedEmails, user.Email)) {
		h.logger.Warn().Str("email", user.Email).Msg("callback: admin not allowed")
		http.Error(w, "access denied", http.StatusForbidden)
		return
	}

	expires := time.Now().Add(sessionTTL)
	signed, err := IssueAdminToken(h.jwtSecret, user.Email, expires)
	if err != nil {
		h.logger.Error().Err(err).Msg("callback: failed signing session")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.setCookie(w, sessionCookie, signed, expires)
	h.clearCookie(w, stateCookie)
	h.logger.Info().Str("email", user.Email).Msg("admin signed in")
	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, sessionCookie)
	http.Redirect(w, r, h.frontendURL+"/login", http.StatusTemporaryRedirect)
}

// fetchUser trades the callback code for a token and reads the profile with it.
func (h *AuthHandler) fetchUser(r *http.Request) (*googleUser, error) {
	token, err := h.oauthConfig.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := h.oauthConfig.Client(r.Context(), token).Get(h.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("get user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get user info: status %d", resp.StatusCode)
	}

	var user googleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &user, nil
}

func (h *AuthHandler) setStateCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	h.setCookie(w, stateCookie, state, time.Now().Add(stateCookieLife))
	return state
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	h.setCookie(w, name, "", time.Now().Add(-time.Hour))
}
