package domain

import "time"

const (
	RoleUser     = "user"
	RoleCoLeader = "co-leader"
	RoleLeader   = "leader"
	RoleAdmin    = "admin"

	// RoleAll is the sentinel accepted by the role gate meaning "any
	// authenticated identity".
	RoleAll = "all"
)

// User models an account: tourists, guides and admins alike, told apart by
// Role. Password material never serialises to JSON.
type User struct {
	ID    string `json:"id" bson:"_id,omitempty"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Photo string `json:"photo,omitempty" bson:"photo,omitempty"`
	Role  string `json:"role" bson:"role"`

	PasswordHash      string    `json:"-" bson:"password_hash"`
	PasswordChangedAt time.Time `json:"-" bson:"password_changed_at,omitempty"`

	// PasswordResetToken holds the sha256 hex of the raw reset token; the
	// raw token itself is only ever emailed, never stored.
	PasswordResetToken  string    `json:"-" bson:"password_reset_token,omitempty"`
	PasswordResetExpire time.Time `json:"-" bson:"password_reset_expire,omitempty"`

	// Active is false for soft-deleted accounts, which are filtered out of
	// every read by default.
	Active bool `json:"-" bson:"active"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ChangedPasswordAfter reports whether the password was rotated after the
// given token issue time. Stale tokens must be rejected.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	// JWT iat has second precision; compare at the same granularity.
	return u.PasswordChangedAt.Truncate(time.Second).After(issuedAt.Truncate(time.Second))
}
