// Package models holds the persisted domain records of authsvc.
package models

import "time"

// User is a local identity record keyed by the Google subject id, with email
// as a secondary lookup key. Name, GoogleSub and Picture are optional; the
// empty string is the single "absent" representation used above the
// persistence layer (stored as NULL).
type User struct {
	ID        int64
	Email     string
	Name      string
	GoogleSub string
	Picture   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
