package tracking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"fleetwatch/config"
	"fleetwatch/fleet"
)

// ErrRefreshInFlight is returned when a refresh is requested while another
// one is still talking to the source. The caller should simply skip the
// cycle; the running refresh will deliver the same data.
var ErrRefreshInFlight = errors.New("refresh already in flight")

// Stats summarizes the current fleet state.
type Stats struct {
	Total   int
	Online  int
	Offline int
	Moving  int
}

// Engine holds the synchronized fleet state and drives a Renderer. All
// exported methods are safe for concurrent use; renderer calls happen under
// the engine lock, in instruction order.
type Engine struct {
	source   fleet.Source
	renderer Renderer
	cfg      config.MapConfig
	log      *zap.Logger

	inFlight atomic.Bool

	mu        sync.Mutex
	devices   []fleet.Device
	positions []fleet.Position
	markers   map[int]Marker
	selected  int
	fitted    bool
	centered  bool
}

func NewEngine(source fleet.Source, renderer Renderer, cfg config.MapConfig) *Engine {
	return &Engine{
		source:   source,
		renderer: renderer,
		cfg:      cfg,
		log:      zap.L().Named("tracking"),
		markers:  map[int]Marker{},
		selected: -1,
	}
}

// Refresh polls devices and then positions, reconciles markers and applies
// the resulting instructions. With resetView the viewport fit is redone even
// if it already happened. A call that overlaps a running refresh returns
// ErrRefreshInFlight without touching the source.
func (e *Engine) Refresh(ctx context.Context, resetView bool) error {
	if !e.inFlight.CompareAndSwap(false, true) {
		return ErrRefreshInFlight
	}
	defer e.inFlight.Store(false)

	devices, err := e.source.Devices(ctx)
	if err != nil {
		return err
	}
	positions, err := e.source.Positions(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.devices = devices
	e.positions = positions

	next, instrs := Reconcile(e.markers, devices, positions)
	e.markers = next
	for _, in := range instrs {
		switch in.Op {
		case OpAdd:
			e.renderer.AddMarker(in.Marker)
		case OpUpdate:
			e.renderer.UpdateMarker(in.Marker)
		case OpRemove:
			e.renderer.RemoveMarker(in.Marker.DeviceID)
		}
	}

	if resetView {
		e.fitted = false
		e.centered = false
	}
	if !e.fitted {
		if b, ok := boundsOf(positions); ok {
			e.renderer.FitBounds(b)
			e.fitted = true
		} else if !e.centered {
			// empty fleet: center once, then leave the user's pan/zoom alone
			e.renderer.SetView(e.cfg.DefaultLat, e.cfg.DefaultLon, e.cfg.DefaultZoom)
			e.centered = true
		}
	}

	if e.selected >= 0 {
		if d, ok := e.deviceByID(e.selected); ok {
			e.renderer.ShowDetail(DeviceDetail{Device: d, Position: e.positionOf(e.selected)})
		}
	}
	return nil
}

// SelectDevice opens the detail panel for a device and recenters the map on
// its last position. Unknown ids are ignored. A device without a position
// still gets a panel, just no recenter.
func (e *Engine) SelectDevice(deviceID int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, ok := e.deviceByID(deviceID)
	if !ok {
		return
	}
	e.selected = deviceID
	p := e.positionOf(deviceID)
	e.renderer.ShowDetail(DeviceDetail{Device: d, Position: p})
	if p != nil {
		e.renderer.SetView(p.Latitude, p.Longitude, e.cfg.SelectZoom)
	}
}

// ClearSelection closes the detail panel.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	e.selected = -1
	e.mu.Unlock()
}

// FilterVehicles shows only devices whose name or unique id contains the
// query, case-insensitively, and returns the matches. An empty query shows
// everything. Purely presentational, the polled state is untouched.
func (e *Engine) FilterVehicles(query string) []fleet.Device {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	visible := make(map[int]bool, len(e.devices))
	matches := make([]fleet.Device, 0, len(e.devices))
	for _, d := range e.devices {
		match := q == "" ||
			strings.Contains(strings.ToLower(d.Name), q) ||
			strings.Contains(strings.ToLower(d.UniqueID), q)
		visible[d.ID] = match
		if match {
			matches = append(matches, d)
		}
	}
	e.renderer.SetListVisibility(visible)
	return matches
}

// Stats counts devices by status. Moving means a position with speed above
// zero exists for the device.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var s Stats
	s.Total = len(e.devices)
	for _, d := range e.devices {
		if d.Status == fleet.StatusOnline {
			s.Online++
		} else {
			s.Offline++
		}
	}
	for _, p := range e.positions {
		if p.Speed != nil && *p.Speed > 0 {
			s.Moving++
		}
	}
	return s
}

// Snapshot returns copies of the last polled devices and positions.
func (e *Engine) Snapshot() ([]fleet.Device, []fleet.Position) {
	e.mu.Lock()
	defer e.mu.Unlock()

	devices := make([]fleet.Device, len(e.devices))
	copy(devices, e.devices)
	positions := make([]fleet.Position, len(e.positions))
	copy(positions, e.positions)
	return devices, positions
}

func (e *Engine) deviceByID(id int) (fleet.Device, bool) {
	for _, d := range e.devices {
		if d.ID == id {
			return d, true
		}
	}
	return fleet.Device{}, false
}

func (e *Engine) positionOf(id int) *fleet.Position {
	for i := range e.positions {
		if e.positions[i].DeviceID == id {
			p := e.positions[i]
			return &p
		}
	}
	return nil
}
