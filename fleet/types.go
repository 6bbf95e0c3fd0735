package fleet

import "time"

// Device connectivity states as reported by the upstream tracking API.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Device is a tracked vehicle. Devices are created and destroyed entirely by
// the upstream source; the client only replaces its local cache on each poll.
type Device struct {
	ID         int       `json:"id"`
	UniqueID   string    `json:"uniqueId"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Category   string    `json:"category,omitempty"`
	Disabled   bool      `json:"disabled,omitempty"`
	LastUpdate time.Time `json:"lastUpdate,omitempty"`
}

// Position is the latest known fix for a device. At most one position per
// device is retained locally; no history is kept.
type Position struct {
	DeviceID  int       `json:"deviceId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     *float64  `json:"speed,omitempty"`
	Altitude  *float64  `json:"altitude,omitempty"`
	Course    *float64  `json:"course,omitempty"`
	FixTime   time.Time `json:"fixTime"`
}

// User is the sanitized profile returned by a successful login. The secret
// is never part of this struct and is never persisted.
type User struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone,omitempty"`
	Administrator bool           `json:"administrator"`
	ReadOnly      bool           `json:"readonly"`
	Disabled      bool           `json:"disabled"`
	DeviceLimit   int            `json:"deviceLimit,omitempty"`
	Latitude      float64        `json:"latitude,omitempty"`
	Longitude     float64        `json:"longitude,omitempty"`
	Zoom          int            `json:"zoom,omitempty"`
	Attributes    map[string]any `json:"attributes,omitempty"`
}
