package tracking

import (
	"fmt"

	"fleetwatch/fleet"
)

// Marker is the rendered representation of one device with a position.
type Marker struct {
	DeviceID  int
	Latitude  float64
	Longitude float64
	Status    string
	Icon      string
	Popup     string
}

// Op is a render instruction kind.
type Op int

const (
	OpAdd Op = iota
	OpUpdate
	OpRemove
)

// Instruction tells a renderer what to do with one marker. OpUpdate moves
// and restyles an existing marker in place; there is never a remove+recreate
// pair for a surviving device.
type Instruction struct {
	Op     Op
	Marker Marker
}

// Bounds is the minimal region covering a set of positions.
type Bounds struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// Reconcile computes the next marker set from the previous one and freshly
// polled data. It is a pure function: positions whose device is unknown are
// skipped, surviving markers become updates, markers whose device stopped
// reporting become removals. Running it twice over identical inputs yields
// an identical marker map and an update-only instruction list.
func Reconcile(prev map[int]Marker, devices []fleet.Device, positions []fleet.Position) (map[int]Marker, []Instruction) {
	byID := make(map[int]fleet.Device, len(devices))
	for _, d := range devices {
		byID[d.ID] = d
	}

	next := make(map[int]Marker, len(positions))
	instrs := make([]Instruction, 0, len(positions))
	for _, p := range positions {
		device, ok := byID[p.DeviceID]
		if !ok {
			continue
		}
		m := Marker{
			DeviceID:  p.DeviceID,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Status:    device.Status,
			Icon:      iconFor(device.Status),
			Popup:     popupFor(device, p),
		}
		next[p.DeviceID] = m
		if _, exists := prev[p.DeviceID]; exists {
			instrs = append(instrs, Instruction{Op: OpUpdate, Marker: m})
		} else {
			instrs = append(instrs, Instruction{Op: OpAdd, Marker: m})
		}
	}

	for id, m := range prev {
		if _, stillThere := next[id]; !stillThere {
			instrs = append(instrs, Instruction{Op: OpRemove, Marker: Marker{DeviceID: m.DeviceID}})
		}
	}
	return next, instrs
}

func iconFor(status string) string {
	if status == fleet.StatusOnline {
		return "vehicle-online"
	}
	return "vehicle-offline"
}

func popupFor(d fleet.Device, p fleet.Position) string {
	return fmt.Sprintf("%s (%s), last fix %s",
		d.Name, d.Status, p.FixTime.UTC().Format("2006-01-02 15:04:05"))
}

// boundsOf computes the fit-bounds region over all positions.
func boundsOf(positions []fleet.Position) (Bounds, bool) {
	if len(positions) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		MinLat: positions[0].Latitude, MaxLat: positions[0].Latitude,
		MinLon: positions[0].Longitude, MaxLon: positions[0].Longitude,
	}
	for _, p := range positions[1:] {
		if p.Latitude < b.MinLat {
			b.MinLat = p.Latitude
		}
		if p.Latitude > b.MaxLat {
			b.MaxLat = p.Latitude
		}
		if p.Longitude < b.MinLon {
			b.MinLon = p.Longitude
		}
		if p.Longitude > b.MaxLon {
			b.MaxLon = p.Longitude
		}
	}
	return b, true
}
