// Package gravatar resolves profile pictures for users without an uploaded avatar.
package gravatar

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pubzy/giveaways/internal/config"
)

const baseURL = "https://www.gravatar.com/avatar/"

var (
	defaultImages = []string{"404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"}
	ratings       = []string{"g", "pg", "r", "x"}
)

// Resolver builds avatar URLs.
type Resolver struct {
	enabled bool
	query   string
}

// New creates a resolver from cfg. Invalid options are dropped with a warning.
// A nil or disabled config yields a resolver that only returns explicit avatars.
func New(cfg *config.GravatarConfig) *Resolver {
	if cfg == nil || !cfg.Enabled {
		return &Resolver{}
	}

	params := url.Values{}
	if cfg.DefaultImage != "" {
		if slices.Contains(defaultImages, cfg.DefaultImage) {
			params.Set("d", cfg.DefaultImage)
		} else {
			log.Warn("Ignoring invalid gravatar default image", "value", cfg.DefaultImage)
		}
	}
	if cfg.Rating != "" {
		if slices.Contains(ratings, cfg.Rating) {
			params.Set("r", cfg.Rating)
		} else {
			log.Warn("Ignoring invalid gravatar rating", "value", cfg.Rating)
		}
	}
	if cfg.Size != 0 {
		if cfg.Size >= 1 && cfg.Size <= 2048 {
			params.Set("s", strconv.Itoa(cfg.Size))
		} else {
			log.Warn("Ignoring invalid gravatar size", "value", cfg.Size)
		}
	}

	return &Resolver{
		enabled: true,
		query:   params.Encode(),
	}
}

// URL returns avatarURL when set, otherwise the Gravatar URL for email.
// It returns an empty string when neither is available.
func (r *Resolver) URL(avatarURL, email string) string {
	if avatarURL != "" {
		return avatarURL
	}
	if r == nil || !r.enabled {
		return ""
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(email))
	u := baseURL + hex.EncodeToString(hash[:])
	if r.query != "" {
		u += "?" + r.query
	}
	return u
}
