package storage

import (
	"context"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/pubzy/giveaways/internal/sheets"
	"github.com/samber/lo"
)

// NewGiveaway holds the fields of a giveaway created by an admin.
type NewGiveaway struct {
	Title       string
	Description string
	Prize       string
	ImageURL    string
	MaxEntries  int
	EndDate     string
}

// GiveawayPatch lists the fields to change. Nil fields are left untouched.
type GiveawayPatch struct {
	Title       *string
	Description *string
	Prize       *string
	ImageURL    *string
	MaxEntries  *int
	EndDate     *string
	IsActive    *bool
}

// apply changes g in place and returns the affected cells.
func (p GiveawayPatch) apply(g *Giveaway) sheets.Record {
	rec := sheets.Record{}
	set := func(field *string, column string, value *string) {
		if value != nil {
			*field = *value
			rec[column] = *value
		}
	}
	set(&g.Title, "title", p.Title)
	set(&g.Description, "description", p.Description)
	set(&g.Prize, "prize", p.Prize)
	set(&g.ImageURL, "imageUrl", p.ImageURL)
	set(&g.EndDate, "endDate", p.EndDate)
	if p.MaxEntries != nil {
		g.MaxEntries = max(*p.MaxEntries, 0)
		rec["maxEntries"] = formatMaxEntries(g.MaxEntries)
	}
	if p.IsActive != nil {
		g.Transition(statusOf(*p.IsActive))
		rec["isActive"] = strconv.FormatBool(g.Status.IsActive())
	}
	return rec
}

// ListGiveaways returns all giveaways, or only the active ones when activeOnly is set.
func (s *Storage) ListGiveaways(ctx context.Context, activeOnly bool) ([]Giveaway, error) {
	giveaways, err := s.giveaways.FindAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	if !activeOnly {
		return giveaways, nil
	}
	return lo.Filter(giveaways, func(g Giveaway, _ int) bool {
		return g.Status.IsActive()
	}), nil
}

// GetGiveaway returns the giveaway with the given id. The lookup is served from the cache while fresh.
func (s *Storage) GetGiveaway(ctx context.Context, id string) (*Giveaway, error) {
	giveaway, found, err := s.giveaways.FindOne(ctx, sheets.Query{"id": id})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &giveaway, nil
}

// currentGiveaway reads a giveaway bypassing the lookup cache. Used before writes.
func (s *Storage) currentGiveaway(ctx context.Context, id string) (*Giveaway, error) {
	giveaways, err := s.giveaways.FindAll(ctx, sheets.Query{"id": id})
	if err != nil {
		return nil, err
	}
	if len(giveaways) == 0 {
		return nil, ErrNotFound
	}
	return &giveaways[0], nil
}

// CreateGiveaway appends a new active giveaway.
func (s *Storage) CreateGiveaway(ctx context.Context, in NewGiveaway) (*Giveaway, error) {
	giveaway := Giveaway{
		ID:          newID(),
		Title:       in.Title,
		Description: in.Description,
		Prize:       in.Prize,
		ImageURL:    in.ImageURL,
		MaxEntries:  max(in.MaxEntries, 0),
		EndDate:     in.EndDate,
		CreatedAt:   s.timestamp(),
		Status:      GiveawayActive,
	}
	if _, err := s.giveaways.Insert(ctx, giveaway); err != nil {
		log.Error("failed to create giveaway", "title", in.Title, "error", err)
		return nil, err
	}
	log.Info("Created giveaway", "id", giveaway.ID, "title", giveaway.Title)
	return &giveaway, nil
}

// UpdateGiveaway applies patch to the giveaway and returns the merged result.
// Only the patched cells are written.
func (s *Storage) UpdateGiveaway(ctx context.Context, id string, patch GiveawayPatch) (*Giveaway, error) {
	giveaway, err := s.currentGiveaway(ctx, id)
	if err != nil {
		return nil, err
	}

	rec := patch.apply(giveaway)
	if len(rec) == 0 {
		return giveaway, nil
	}

	found, err := s.giveaways.Patch(ctx, sheets.Query{"id": id}, rec)
	if err != nil {
		log.Error("failed to update giveaway", "id", id, "error", err)
		return nil, err
	}
	if !found {
		// removed from the sheet between read and write
		return nil, ErrNotFound
	}
	return giveaway, nil
}

// DeactivateGiveaway soft deletes a giveaway. Deactivating an inactive giveaway succeeds without writing.
func (s *Storage) DeactivateGiveaway(ctx context.Context, id string) error {
	giveaway, err := s.currentGiveaway(ctx, id)
	if err != nil {
		return err
	}
	if !giveaway.Transition(GiveawayInactive) {
		log.Debug("Giveaway already inactive", "id", id)
		return nil
	}

	found, err := s.giveaways.Patch(ctx, sheets.Query{"id": id}, sheets.Record{
		"isActive": strconv.FormatBool(false),
	})
	if err != nil {
		log.Error("failed to deactivate giveaway", "id", id, "error", err)
		return err
	}
	if !found {
		return ErrNotFound
	}
	log.Info("Deactivated giveaway", "id", id, "title", giveaway.Title)
	return nil
}
