package domain

import "time"

// PasswordResetToken is the stored record of an issued reset token. The raw
// token only exists in the mail sent to the user; TokenHash is its
// fingerprint.
type PasswordResetToken struct {
	ID        string
	TokenHash string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t PasswordResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Redeemable reports whether the token may still be consumed at now.
func (t PasswordResetToken) Redeemable(now time.Time) bool {
	return !t.Used && !t.Expired(now)
}
