package domain

import (
	"time"
)

// BadgeState is the lifecycle of a badge for one user.
// Locked -> Pending -> Claimed; Claimed is terminal and its eligibility
// predicate is never evaluated again.
type BadgeState string

const (
	BadgeLocked  BadgeState = "LOCKED"
	BadgePending BadgeState = "PENDING"
	BadgeClaimed BadgeState = "CLAIMED"
)

// Badge identifiers from the fixed catalog.
const (
	BadgeHeartCritic    = "heart-critic"
	BadgeListCurator    = "curador-listas"
	BadgeFirstTenLogins = "first-ten-logins"
)

// BadgeDef describes one entry of the fixed badge catalog.
type BadgeDef struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// BadgeCatalog is the full set of badges the tracker knows about.
var BadgeCatalog = []BadgeDef{
	{
		ID:          BadgeHeartCritic,
		Label:       "Crítico do Coração",
		Description: "Publicou 5 reviews e ganhou uma medalha especial.",
		Icon:        "heart",
	},
	{
		ID:          BadgeListCurator,
		Label:       "Curador de Listas",
		Description: "Criou 3 listas personalizadas.",
		Icon:        "heart",
	},
	{
		ID:          BadgeFirstTenLogins,
		Label:       "Usuário #1",
		Description: "Um dos 10 primeiros logins (por IP) garantiu esta badge exclusiva.",
		Icon:        "one",
	},
}

// BadgeDefByID looks a badge up in the catalog.
func BadgeDefByID(id string) (BadgeDef, bool) {
	for _, def := range BadgeCatalog {
		if def.ID == id {
			return def, true
		}
	}
	return BadgeDef{}, false
}

// UserBadge is one user's server-tracked state for one catalog badge.
// Badges without a row are implicitly Locked.
type UserBadge struct {
	ID        int64      `json:"id" db:"id"`
	UserID    string     `json:"user_id" db:"user_id"`
	BadgeID   string     `json:"badge_id" db:"badge_id"`
	State     BadgeState `json:"state" db:"state"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// IPSession counts how many sessions have been seen from one public IP,
// backing the first-ten-logins gate.
type IPSession struct {
	IP        string    `json:"ip" db:"ip"`
	Count     int64     `json:"count" db:"session_count"`
	FirstSeen time.Time `json:"first_seen" db:"first_seen"`
	LastSeen  time.Time `json:"last_seen" db:"last_seen"`
}
