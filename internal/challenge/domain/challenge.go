package domain

import "time"

// Challenge is a pending proof-of-intent for one (user, event) pair (stored in otp_challenges).
// CodeHash is the SHA-256 hex of the 6-digit code; the plain code is never persisted.
type Challenge struct {
	ID         string
	UserID     string
	EventID    string
	CodeHash   string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	Verified   bool
	VerifiedAt *time.Time
}

// Live reports whether the challenge can still be redeemed at now.
func (c *Challenge) Live(now time.Time) bool {
	return c != nil && !c.Verified && now.Before(c.ExpiresAt)
}
