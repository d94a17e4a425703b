package models

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mergestat/timediff"
	"github.com/pubzy/giveaways/internal/gravatar"
	"github.com/pubzy/giveaways/internal/storage"
	"github.com/samber/lo"
)

// nullable maps an empty cell to JSON null.
func nullable(s string) *string {
	return lo.EmptyableToPtr(s)
}

// ToUser converts a storage.User, dropping the password and resolving the avatar.
func ToUser(u *storage.User, avatars *gravatar.Resolver) User {
	return User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: nullable(avatars.URL(u.AvatarURL, u.Email)),
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// ToEntry converts a storage.Entry.
func ToEntry(e *storage.Entry) Entry {
	return Entry{
		ID:        e.ID,
		Email:     e.Email,
		Name:      e.Name,
		EnteredAt: e.EnteredAt,
	}
}

// ToGiveaway converts a storage.Giveaway.
func ToGiveaway(g storage.Giveaway) Giveaway {
	return Giveaway{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Prize:       g.Prize,
		ImageURL:    nullable(g.ImageURL),
		MaxEntries:  g.MaxEntries,
		EndDate:     g.EndDate,
		CreatedAt:   g.CreatedAt,
		IsActive:    g.Status.IsActive(),
	}
}

// ToGiveaways converts a slice of storage.Giveaway.
func ToGiveaways(items []storage.Giveaway) []Giveaway {
	return lo.Map(items, func(g storage.Giveaway, _ int) Giveaway { return ToGiveaway(g) })
}

// ToGiveawayEntry converts a storage.GiveawayEntry.
func ToGiveawayEntry(e storage.GiveawayEntry) GiveawayEntry {
	return GiveawayEntry{
		ID:         e.ID,
		GiveawayID: e.GiveawayID,
		UserID:     e.UserID,
		EnteredAt:  e.EnteredAt,
	}
}

// ToGiveawayEntries converts a slice of storage.GiveawayEntry.
func ToGiveawayEntries(items []storage.GiveawayEntry) []GiveawayEntry {
	return lo.Map(items, func(e storage.GiveawayEntry, _ int) GiveawayEntry { return ToGiveawayEntry(e) })
}

// ToAdminGiveawayEntries converts the detailed admin listing.
func ToAdminGiveawayEntries(items []storage.DetailedGiveawayEntry) []AdminGiveawayEntry {
	return lo.Map(items, func(e storage.DetailedGiveawayEntry, _ int) AdminGiveawayEntry {
		return AdminGiveawayEntry{
			GiveawayEntry: ToGiveawayEntry(e.GiveawayEntry),
			Username:      e.Username,
			Email:         e.Email,
			GiveawayTitle: e.GiveawayTitle,
		}
	})
}

// ToLeaderboardEntry converts a storage.LeaderboardEntry.
func ToLeaderboardEntry(e storage.LeaderboardEntry) LeaderboardEntry {
	return LeaderboardEntry{
		ID:       e.ID,
		Username: e.Username,
		Giveaway: e.Giveaway,
		Prize:    e.Prize,
		Date:     e.Date,
	}
}

// ToLeaderboard converts a slice of storage.LeaderboardEntry.
func ToLeaderboard(items []storage.LeaderboardEntry) []LeaderboardEntry {
	return lo.Map(items, func(e storage.LeaderboardEntry, _ int) LeaderboardEntry { return ToLeaderboardEntry(e) })
}

// ToUpdates converts a slice of storage.Update.
func ToUpdates(items []storage.Update) []Update {
	return lo.Map(items, func(u storage.Update, _ int) Update {
		return Update{
			ID:        u.ID,
			Title:     u.Title,
			Content:   u.Content,
			Type:      u.Type,
			IconName:  nullable(u.IconName),
			CreatedAt: u.CreatedAt,
		}
	})
}

// ToVideos converts a slice of storage.Video, labelling view counts and publish dates.
func ToVideos(items []storage.Video) []Video {
	return lo.Map(items, func(v storage.Video, _ int) Video {
		video := Video{
			ID:             v.ID,
			VideoID:        v.VideoID,
			Title:          v.Title,
			Description:    nullable(v.Description),
			ThumbnailURL:   nullable(v.ThumbnailURL),
			PublishedAt:    v.PublishedAt,
			ViewCount:      v.ViewCount,
			ViewCountLabel: humanize.Comma(v.ViewCount) + " views",
			FetchedAt:      v.FetchedAt,
		}
		if published, err := time.Parse(time.RFC3339, v.PublishedAt); err == nil {
			video.PublishedLabel = timediff.TimeDiff(published)
		}
		return video
	})
}
