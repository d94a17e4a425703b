package models

import "github.com/eko/gocache/lib/v4/codec"

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse is returned by endpoints that only acknowledge an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// CountResponse is returned by the count endpoints.
type CountResponse struct {
	Count int `json:"count"`
}

// User is a user without the password hash.
type User struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl"`
	IsAdmin   bool    `json:"isAdmin"`
	CreatedAt string  `json:"createdAt"`
}

// UserResponse wraps the user returned by signup and login.
type UserResponse struct {
	User User `json:"user"`
}

// Entry is a giveaway counter signup.
type Entry struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	EnteredAt string `json:"enteredAt"`
}

// EntryResponse is returned after submitting an entry.
type EntryResponse struct {
	Message string `json:"message"`
	Entry   Entry  `json:"entry"`
}

// Giveaway is a giveaway as shown on the site.
type Giveaway struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Prize       string  `json:"prize"`
	ImageURL    *string `json:"imageUrl"`
	MaxEntries  int     `json:"maxEntries"`
	EndDate     string  `json:"endDate"`
	CreatedAt   string  `json:"createdAt"`
	IsActive    bool    `json:"isActive"`
}

// GiveawayEntry links a user to a giveaway.
type GiveawayEntry struct {
	ID         string `json:"id"`
	GiveawayID string `json:"giveawayId"`
	UserID     string `json:"userId"`
	EnteredAt  string `json:"enteredAt"`
}

// GiveawayEntryResponse is returned after entering a giveaway.
type GiveawayEntryResponse struct {
	Message string        `json:"message"`
	Entry   GiveawayEntry `json:"entry"`
}

// AdminGiveawayEntry is a giveaway entry with its user and giveaway resolved.
type AdminGiveawayEntry struct {
	GiveawayEntry
	Username      string `json:"username"`
	Email         string `json:"email"`
	GiveawayTitle string `json:"giveawayTitle"`
}

// LeaderboardEntry is a recorded win. Field names match the spreadsheet columns.
type LeaderboardEntry struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Giveaway string `json:"Giveaway"`
	Prize    string `json:"prize"`
	Date     string `json:"Date"`
}

// Update is a news post.
type Update struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Type      string  `json:"type"`
	IconName  *string `json:"iconName"`
	CreatedAt string  `json:"createdAt"`
}

// Video is a synced upload with display labels.
type Video struct {
	ID             string  `json:"id"`
	VideoID        string  `json:"videoId"`
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	ThumbnailURL   *string `json:"thumbnailUrl"`
	PublishedAt    string  `json:"publishedAt"`
	PublishedLabel string  `json:"publishedLabel,omitempty"`
	ViewCount      int64   `json:"viewCount"`
	ViewCountLabel string  `json:"viewCountLabel"`
	FetchedAt      string  `json:"fetchedAt"`
}

// HealthResponse is returned by the admin health endpoint.
type HealthResponse struct {
	Backend   ComponentHealth `json:"backend"`
	Cache     CacheHealth     `json:"cache"`
	Host      HostHealth      `json:"host"`
	Jobs      []JobHealth     `json:"jobs"`
	Uptime    string          `json:"uptime"`
	Version   string          `json:"version"`
	CheckedAt string          `json:"checkedAt"`
}

// ComponentHealth reports whether a dependency answered.
type ComponentHealth struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// CacheHealth describes the lookup cache.
type CacheHealth struct {
	ComponentHealth
	Type    string       `json:"type"`
	Entries int          `json:"entries"`
	Stats   *codec.Stats `json:"stats,omitempty"`
}

// HostHealth describes the machine the server runs on.
type HostHealth struct {
	MemoryUsedPercent float64 `json:"memoryUsedPercent"`
	MemoryTotal       string  `json:"memoryTotal"`
	MemoryAvailable   string  `json:"memoryAvailable"`
	Error             string  `json:"error,omitempty"`
}

// JobHealth describes one background job.
type JobHealth struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	LastRun   string `json:"lastRun,omitempty"`
	NextRun   string `json:"nextRun,omitempty"`
	RunCount  int    `json:"runCount"`
	LastError string `json:"lastError,omitempty"`
}
