package auth

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pubzy/giveaways/internal/api/binding"
	"github.com/pubzy/giveaways/internal/api/models"
	"github.com/pubzy/giveaways/internal/gravatar"
	"github.com/pubzy/giveaways/internal/storage"
)

const (
	sessionUserID = "user_id"
	contextUser   = "user"

	sessionMaxAge         = 24 * 60 * 60
	rememberSessionMaxAge = 30 * sessionMaxAge
)

// Provider authenticates users against the Users table and keeps them in a cookie session.
type Provider struct {
	storage       *storage.Storage
	avatars       *gravatar.Resolver
	secureCookies bool
}

// New creates an auth provider.
func New(st *storage.Storage, avatars *gravatar.Resolver, secureCookies bool) *Provider {
	return &Provider{
		storage:       st,
		avatars:       avatars,
		secureCookies: secureCookies,
	}
}

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Username        string `json:"username" binding:"min=4,max=10"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"min=6,eqfield=Password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username   string `json:"username" binding:"min=4,max=10"`
	Password   string `json:"password" binding:"min=6"`
	RememberMe bool   `json:"rememberMe"`
}

var credentialMessages = binding.Messages{
	"Username": {
		"min": "Username must be at least 4 characters",
		"max": "Username must be at most 10 characters",
	},
	"Email": {
		"required": "Invalid email address",
		"email":    "Invalid email address",
	},
	"Password": {
		"min": "Password must be at least 6 characters",
	},
	"ConfirmPassword": {
		"min":     "Password must be at least 6 characters",
		"eqfield": "Passwords don't match",
	},
}

// Signup registers a user and logs them in.
func (p *Provider) Signup(c *gin.Context) {
	var req SignupRequest
	if !binding.JSON(c, &req, credentialMessages, "Invalid signup data") {
		return
	}
	ctx := c.Request.Context()

	if err := p.storage.CheckUsernameAvailable(ctx, req.Username); err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Username already exists"})
			return
		}
		log.Error("failed to check username", "username", req.Username, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error creating user"})
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error creating user"})
		return
	}

	user, err := p.storage.CreateUser(ctx, storage.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error creating user"})
		return
	}

	if err := p.startSession(c, user.ID, sessionMaxAge); err != nil {
		log.Error("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error creating user"})
		return
	}

	log.Info("User signed up", "username", user.Username, "admin", user.IsAdmin)
	c.JSON(http.StatusCreated, models.UserResponse{User: models.ToUser(user, p.avatars)})
}

// Login verifies the credentials and starts a session lasting one day, or 30 days with rememberMe.
func (p *Provider) Login(c *gin.Context) {
	var req LoginRequest
	if !binding.JSON(c, &req, credentialMessages, "Invalid login data") {
		return
	}

	user, err := p.storage.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Error("failed to look up user", "username", req.Username, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error logging in"})
		return
	}
	if user == nil || !CheckPassword(user.Password, req.Password) {
		log.Debug("Login failed", "username", req.Username)
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid username or password"})
		return
	}

	maxAge := sessionMaxAge
	if req.RememberMe {
		maxAge = rememberSessionMaxAge
	}
	if err := p.startSession(c, user.ID, maxAge); err != nil {
		log.Error("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error logging in"})
		return
	}

	c.JSON(http.StatusOK, models.UserResponse{User: models.ToUser(user, p.avatars)})
}

// Logout clears the session cookie.
func (p *Provider) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(p.cookieOptions(-1))
	if err := session.Save(); err != nil {
		log.Error("failed to clear session", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Error logging out"})
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Logged out successfully"})
}

// User returns the logged in user. Must run behind RequireAuth.
func (p *Provider) User(c *gin.Context) {
	c.JSON(http.StatusOK, models.ToUser(CurrentUser(c), p.avatars))
}

func (p *Provider) startSession(c *gin.Context, userID string, maxAge int) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserID, userID)
	session.Options(p.cookieOptions(maxAge))
	return session.Save()
}

func (p *Provider) cookieOptions(maxAge int) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
