package models

import (
	"strings"
	"time"
)

type Status string

const (
	StatusLost     Status = "lost"
	StatusFound    Status = "found"
	StatusReunited Status = "reunited"
)

// Opposite maps lost to found and found to lost. Any other status has no
// counterpart and yields the empty status.
func (s Status) Opposite() Status {
	switch s {
	case StatusLost:
		return StatusFound
	case StatusFound:
		return StatusLost
	}
	return ""
}

// Active reports whether s is a status a new submission may carry.
func (s Status) Active() bool {
	return s == StatusLost || s == StatusFound
}

func (s Status) Valid() bool {
	return s.Active() || s == StatusReunited
}

// WatchReport is one lost or found submission.
type WatchReport struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	SerialNumber string    `gorm:"size:128;not null;index:idx_serial_status,priority:1" json:"serial_number"`
	Status       Status    `gorm:"size:16;not null;index:idx_serial_status,priority:2;index" json:"status"`
	Email        string    `gorm:"size:320;not null" json:"email"`
	Model        string    `gorm:"size:255" json:"model"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	DateReported time.Time `gorm:"not null" json:"date_reported"`
	// set only once the report is reunited
	ReunitedWith string    `gorm:"size:320" json:"reunited_with,omitempty"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// MapPoint is the public projection of an active report. It never carries
// the serial number or any contact.
type MapPoint struct {
	Status       Status    `json:"status"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	DateReported time.Time `json:"date_reported"`
	Model        string    `json:"model"`
}

// Stats holds registry counts. Reunited counts pairs, not rows.
type Stats struct {
	Lost     int64 `json:"lost"`
	Found    int64 `json:"found"`
	Reunited int64 `json:"reunited"`
}

// NormalizeSerial trims and upper-cases a serial number so equivalent
// spellings match each other.
func NormalizeSerial(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// TimeNow is a helper to return current time; kept as a seam for tests
var TimeNow = func() time.Time { return time.Now().UTC() }
