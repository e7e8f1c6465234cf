package auth

import "time"

// Strategy issues and verifies the session tokens that identify the acting
// user behind every quotation, payment, and override call. The resolved
// user id becomes the actor recorded on audit rows.
type Strategy interface {
	IssueToken(userID int64) (string, error)
	ParseToken(token string) (int64, error)
	Name() string
}

// Options tunes token issuance.
type Options struct {
	TTL time.Duration
}
