package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type Handler struct {
	oauthConfig *oauth2.Config
	store       *Store
	config      *Config
}

func NewHandler(oauthConfig *oauth2.Config, store *Store, config *Config) *Handler {
	return &Handler{
		oauthConfig: oauthConfig,
		store:       store,
		config:      config,
	}
}

// Login starts the OAuth flow and returns the provider URL to redirect to.
func (h *Handler) Login(c *gin.Context) {
	state, err := h.store.NewState(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start login"})
		return
	}

	url := h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Callback completes the OAuth flow, creates the session cookie, and sends
// the browser back to the dashboard.
func (h *Handler) Callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing state or code parameter"})
		return
	}

	valid, err := h.store.ConsumeState(c.Request.Context(), state)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate state"})
		return
	}
	if !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired state"})
		return
	}

	token, err := h.oauthConfig.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to exchange code for token"})
		return
	}

	info, err := fetchUserInfo(token.AccessToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user info"})
		return
	}
	if !info.VerifiedEmail {
		c.JSON(http.StatusForbidden, gin.H{"error": "Email not verified"})
		return
	}

	user, err := h.store.UpsertUser(c.Request.Context(), info)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	session, err := h.store.CreateSession(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	h.setSessionCookie(c, session.ID, int(h.config.SessionDuration.Seconds()))

	frontendURL := h.config.FrontendURL
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}
	c.Redirect(http.StatusFound, frontendURL+"/auth/callback")
}

func (h *Handler) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie("session_id"); err == nil {
		h.store.DeleteSession(c.Request.Context(), sessionID)
	}

	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) Me(c *gin.Context) {
	user, ok := c.Get("user")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	switch h.config.CookieSameSite {
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "none":
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)

	domain := h.config.CookieDomain
	if domain == "localhost" {
		domain = ""
	}

	c.SetCookie("session_id", value, maxAge, "/", domain, h.config.CookieSecure, true)
}

func fetchUserInfo(accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequest(http.MethodGet, userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to fetch user info: status %d, body: %s", resp.StatusCode, string(body))
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &info, nil
}
