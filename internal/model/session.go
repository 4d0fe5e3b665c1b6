package model

import "time"

// BillSession is a short-lived collaborative bill-viewing session identified
// by a human-shareable code.
type BillSession struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Owner     string    `json:"owner"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session's expiry instant is strictly before now.
func (s *BillSession) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
