package storage

import "context"

// ListUpdates returns all news posts, newest first.
func (s *Storage) ListUpdates(ctx context.Context) ([]Update, error) {
	updates, err := s.updates.FindAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	sortByDateDesc(updates, func(u Update) string { return u.CreatedAt })
	return updates, nil
}

// ListVideos returns all synced videos, most recently published first.
func (s *Storage) ListVideos(ctx context.Context) ([]Video, error) {
	videos, err := s.videos.FindAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	sortByDateDesc(videos, func(v Video) string { return v.PublishedAt })
	return videos, nil
}
