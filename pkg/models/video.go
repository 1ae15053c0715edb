package models

import "time"

// Video represents an uploaded source clip. The UUID is the only
// identifier shared between the API, the database, and the on-disk
// layout (<data_root>/videos/<uuid>/source.<ext>).
type Video struct {
	ID        string    `json:"id" db:"id"`
	Path      string    `json:"-" db:"path"`
	OwnerKey  string    `json:"-" db:"owner_key"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
