package storage

import "github.com/charmbracelet/log"

// GiveawayStatus is the lifecycle state of a giveaway.
type GiveawayStatus string

const (
	GiveawayActive   GiveawayStatus = "active"
	GiveawayInactive GiveawayStatus = "inactive"
)

func statusOf(active bool) GiveawayStatus {
	if active {
		return GiveawayActive
	}
	return GiveawayInactive
}

// IsActive reports whether the giveaway accepts entries and is listed publicly.
func (s GiveawayStatus) IsActive() bool {
	return s == GiveawayActive
}

// Transition moves g to target and reports whether the status changed.
// Both directions are allowed and moving to the current status is a no-op.
// This is the only place a giveaway status is changed.
func (g *Giveaway) Transition(target GiveawayStatus) bool {
	if target != GiveawayActive && target != GiveawayInactive {
		log.Warn("Ignoring unknown giveaway status", "giveaway", g.ID, "status", target)
		return false
	}
	if g.Status == target {
		return false
	}
	log.Debug("Giveaway status changed", "giveaway", g.ID, "from", g.Status, "to", target)
	g.Status = target
	return true
}
