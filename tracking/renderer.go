package tracking

import (
	"fmt"

	"go.uber.org/zap"

	"fleetwatch/fleet"
)

// DeviceDetail is what the detail panel shows for a selected device.
// Position is nil when the device has never reported a fix.
type DeviceDetail struct {
	Device   fleet.Device
	Position *fleet.Position
}

// Text renders the panel body.
func (d DeviceDetail) Text() string {
	if d.Position == nil {
		return fmt.Sprintf("%s: no position information", d.Device.Name)
	}
	p := d.Position
	return fmt.Sprintf("%s: %.6f, %.6f at %s",
		d.Device.Name, p.Latitude, p.Longitude,
		p.FixTime.UTC().Format("2006-01-02 15:04:05"))
}

// Renderer receives view updates from the engine. Implementations must not
// call back into the engine.
type Renderer interface {
	AddMarker(m Marker)
	UpdateMarker(m Marker)
	RemoveMarker(deviceID int)
	FitBounds(b Bounds)
	SetView(lat, lon float64, zoom int)
	ShowDetail(d DeviceDetail)
	SetListVisibility(visible map[int]bool)
}

// LogRenderer logs every instruction instead of drawing. Used by the watch
// command and in tests.
type LogRenderer struct {
	log *zap.Logger
}

func NewLogRenderer() *LogRenderer {
	return &LogRenderer{log: zap.L().Named("render")}
}

func (r *LogRenderer) AddMarker(m Marker) {
	r.log.Info("add marker", zap.Int("deviceId", m.DeviceID),
		zap.Float64("lat", m.Latitude), zap.Float64("lon", m.Longitude),
		zap.String("status", m.Status))
}

func (r *LogRenderer) UpdateMarker(m Marker) {
	r.log.Debug("update marker", zap.Int("deviceId", m.DeviceID),
		zap.Float64("lat", m.Latitude), zap.Float64("lon", m.Longitude),
		zap.String("status", m.Status))
}

func (r *LogRenderer) RemoveMarker(deviceID int) {
	r.log.Info("remove marker", zap.Int("deviceId", deviceID))
}

func (r *LogRenderer) FitBounds(b Bounds) {
	r.log.Info("fit bounds",
		zap.Float64("minLat", b.MinLat), zap.Float64("minLon", b.MinLon),
		zap.Float64("maxLat", b.MaxLat), zap.Float64("maxLon", b.MaxLon))
}

func (r *LogRenderer) SetView(lat, lon float64, zoom int) {
	r.log.Info("set view", zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Int("zoom", zoom))
}

func (r *LogRenderer) ShowDetail(d DeviceDetail) {
	r.log.Info("show detail", zap.Int("deviceId", d.Device.ID), zap.String("text", d.Text()))
}

func (r *LogRenderer) SetListVisibility(visible map[int]bool) {
	shown := 0
	for _, v := range visible {
		if v {
			shown++
		}
	}
	r.log.Debug("list visibility", zap.Int("shown", shown), zap.Int("total", len(visible)))
}
