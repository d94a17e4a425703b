package storage

import (
	"strconv"
	"strings"

	"github.com/ccoveille/go-safecast"
	"github.com/pubzy/giveaways/internal/sheets"
	"github.com/spf13/cast"
)

// Table names as they appear in the backing spreadsheet.
const (
	TableUsers           = "Users"
	TableEntries         = "Entries"
	TableGiveaways       = "Giveaways"
	TableGiveawayEntries = "GiveawayEntries"
	TableUpdates         = "Updates"
	TableVideos          = "Videos"
	TableLeaderboard     = "Leaderboard"
)

// User is a registered account. Password holds a bcrypt hash, or plaintext for rows written by older versions.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	AvatarURL string
	IsAdmin   bool
	CreatedAt string
}

// Entry is a signup to the site-wide giveaway counter.
type Entry struct {
	ID        string
	Email     string
	Name      string
	EnteredAt string
}

// Giveaway is a prize users can enter. It is never removed, only deactivated.
type Giveaway struct {
	ID          string
	Title       string
	Description string
	Prize       string
	ImageURL    string
	// MaxEntries caps the number of entries. Zero means unlimited.
	MaxEntries int
	EndDate    string
	CreatedAt  string
	Status     GiveawayStatus
}

// GiveawayEntry links a user to a giveaway they entered.
type GiveawayEntry struct {
	ID         string
	GiveawayID string
	UserID     string
	EnteredAt  string
}

// LeaderboardEntry records a win. Fields are free text and not linked to other tables.
type LeaderboardEntry struct {
	ID       string
	Username string
	Giveaway string
	Prize    string
	Date     string
}

// Update is a news post shown on the home page.
type Update struct {
	ID        string
	Title     string
	Content   string
	Type      string
	IconName  string
	CreatedAt string
}

// Video is a synced YouTube upload.
type Video struct {
	ID           string
	VideoID      string
	Title        string
	Description  string
	ThumbnailURL string
	PublishedAt  string
	ViewCount    int64
	FetchedAt    string
}

var userCodec = sheets.Codec[User]{
	Schema: sheets.Schema{
		Table:   TableUsers,
		Columns: []string{"id", "username", "email", "password", "avatarUrl", "isAdmin", "createdAt"},
	},
	Encode: func(u User) sheets.Record {
		return sheets.Record{
			"id":        u.ID,
			"username":  u.Username,
			"email":     u.Email,
			"password":  u.Password,
			"avatarUrl": u.AvatarURL,
			"isAdmin":   strconv.FormatBool(u.IsAdmin),
			"createdAt": u.CreatedAt,
		}
	},
	Decode: func(r sheets.Record) (User, error) {
		return User{
			ID:        r["id"],
			Username:  r["username"],
			Email:     r["email"],
			Password:  r["password"],
			AvatarURL: r["avatarUrl"],
			IsAdmin:   cast.ToBool(r["isAdmin"]),
			CreatedAt: r["createdAt"],
		}, nil
	},
}

var entryCodec = sheets.Codec[Entry]{
	Schema: sheets.Schema{
		Table:   TableEntries,
		Columns: []string{"id", "email", "name", "enteredAt"},
	},
	Encode: func(e Entry) sheets.Record {
		return sheets.Record{
			"id":        e.ID,
			"email":     e.Email,
			"name":      e.Name,
			"enteredAt": e.EnteredAt,
		}
	},
	Decode: func(r sheets.Record) (Entry, error) {
		return Entry{
			ID:        r["id"],
			Email:     r["email"],
			Name:      r["name"],
			EnteredAt: r["enteredAt"],
		}, nil
	},
}

var giveawayCodec = sheets.Codec[Giveaway]{
	Schema: sheets.Schema{
		Table: TableGiveaways,
		Columns: []string{
			"id", "title", "description", "prize", "imageUrl",
			"maxEntries", "endDate", "createdAt", "isActive",
		},
	},
	Encode: func(g Giveaway) sheets.Record {
		return sheets.Record{
			"id":          g.ID,
			"title":       g.Title,
			"description": g.Description,
			"prize":       g.Prize,
			"imageUrl":    g.ImageURL,
			"maxEntries":  formatMaxEntries(g.MaxEntries),
			"endDate":     g.EndDate,
			"createdAt":   g.CreatedAt,
			"isActive":    strconv.FormatBool(g.Status.IsActive()),
		}
	},
	Decode: func(r sheets.Record) (Giveaway, error) {
		maxEntries, err := safecast.Convert[int](parseDecimal(r["maxEntries"]))
		if err != nil {
			return Giveaway{}, err
		}
		return Giveaway{
			ID:          r["id"],
			Title:       r["title"],
			Description: r["description"],
			Prize:       r["prize"],
			ImageURL:    r["imageUrl"],
			MaxEntries:  max(maxEntries, 0),
			EndDate:     r["endDate"],
			CreatedAt:   r["createdAt"],
			Status:      statusOf(cast.ToBool(r["isActive"])),
		}, nil
	},
}

var giveawayEntryCodec = sheets.Codec[GiveawayEntry]{
	Schema: sheets.Schema{
		Table:   TableGiveawayEntries,
		Columns: []string{"id", "giveawayId", "userId", "enteredAt"},
	},
	Encode: func(e GiveawayEntry) sheets.Record {
		return sheets.Record{
			"id":         e.ID,
			"giveawayId": e.GiveawayID,
			"userId":     e.UserID,
			"enteredAt":  e.EnteredAt,
		}
	},
	Decode: func(r sheets.Record) (GiveawayEntry, error) {
		return GiveawayEntry{
			ID:         r["id"],
			GiveawayID: r["giveawayId"],
			UserID:     r["userId"],
			EnteredAt:  r["enteredAt"],
		}, nil
	},
}

var leaderboardCodec = sheets.Codec[LeaderboardEntry]{
	Schema: sheets.Schema{
		Table:   TableLeaderboard,
		Columns: []string{"id", "username", "Giveaway", "prize", "Date"},
	},
	Encode: func(e LeaderboardEntry) sheets.Record {
		return sheets.Record{
			"id":       e.ID,
			"username": e.Username,
			"Giveaway": e.Giveaway,
			"prize":    e.Prize,
			"Date":     e.Date,
		}
	},
	Decode: func(r sheets.Record) (LeaderboardEntry, error) {
		return LeaderboardEntry{
			ID:       r["id"],
			Username: r["username"],
			Giveaway: r["Giveaway"],
			Prize:    r["prize"],
			Date:     r["Date"],
		}, nil
	},
}

var updateCodec = sheets.Codec[Update]{
	Schema: sheets.Schema{
		Table:   TableUpdates,
		Columns: []string{"id", "title", "content", "type", "iconName", "createdAt"},
	},
	Encode: func(u Update) sheets.Record {
		return sheets.Record{
			"id":        u.ID,
			"title":     u.Title,
			"content":   u.Content,
			"type":      u.Type,
			"iconName":  u.IconName,
			"createdAt": u.CreatedAt,
		}
	},
	Decode: func(r sheets.Record) (Update, error) {
		return Update{
			ID:        r["id"],
			Title:     r["title"],
			Content:   r["content"],
			Type:      r["type"],
			IconName:  r["iconName"],
			CreatedAt: r["createdAt"],
		}, nil
	},
}

var videoCodec = sheets.Codec[Video]{
	Schema: sheets.Schema{
		Table: TableVideos,
		Columns: []string{
			"id", "videoId", "title", "description", "thumbnailUrl",
			"publishedAt", "viewCount", "fetchedAt",
		},
	},
	Encode: func(v Video) sheets.Record {
		return sheets.Record{
			"id":           v.ID,
			"videoId":      v.VideoID,
			"title":        v.Title,
			"description":  v.Description,
			"thumbnailUrl": v.ThumbnailURL,
			"publishedAt":  v.PublishedAt,
			"viewCount":    strconv.FormatInt(v.ViewCount, 10),
			"fetchedAt":    v.FetchedAt,
		}
	},
	Decode: func(r sheets.Record) (Video, error) {
		return Video{
			ID:           r["id"],
			VideoID:      r["videoId"],
			Title:        r["title"],
			Description:  r["description"],
			ThumbnailURL: r["thumbnailUrl"],
			PublishedAt:  r["publishedAt"],
			ViewCount:    parseDecimal(r["viewCount"]),
			FetchedAt:    r["fetchedAt"],
		}, nil
	},
}

// parseDecimal reads a base-10 integer cell. Blank or malformed cells read as 0.
func parseDecimal(v string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func formatMaxEntries(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// Schemas returns the layout of every table, in creation order.
func Schemas() []sheets.Schema {
	return []sheets.Schema{
		userCodec.Schema,
		entryCodec.Schema,
		giveawayCodec.Schema,
		giveawayEntryCodec.Schema,
		updateCodec.Schema,
		videoCodec.Schema,
		leaderboardCodec.Schema,
	}
}
