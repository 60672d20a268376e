package domain

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Profile holds the public display data shown next to reviews and on the
// profile page. It is created together with the user account.
type Profile struct {
	UserID    string         `json:"user_id" db:"user_id"`
	FullName  string         `json:"full_name" db:"full_name"`
	Bio       string         `json:"bio" db:"bio"`
	AvatarURL sql.NullString `json:"-" db:"avatar_url"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// Avatar returns the avatar URL or "" when none was uploaded yet.
func (p *Profile) Avatar() string {
	if p.AvatarURL.Valid {
		return p.AvatarURL.String
	}
	return ""
}

// MarshalJSON flattens the nullable avatar column into a plain string field.
func (p Profile) MarshalJSON() ([]byte, error) {
	type alias Profile
	return json.Marshal(struct {
		alias
		AvatarURL string `json:"avatar_url,omitempty"`
	}{alias: alias(p), AvatarURL: p.Avatar()})
}

// UpdateProfileRequest is the body for PUT /api/profile.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=100"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=500"`
}
