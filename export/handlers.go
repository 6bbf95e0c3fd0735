package export

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetwatch/config"
	"fleetwatch/fleet"
)

// Snapshotter supplies the last polled fleet state.
type Snapshotter interface {
	Snapshot() ([]fleet.Device, []fleet.Position)
}

// Handler serves vehicle monitoring documents built from a snapshot source.
type Handler struct {
	src      Snapshotter
	producer string
	validFor time.Duration
	now      func() time.Time
}

func NewHandler(src Snapshotter, cfg config.AppConfig) *Handler {
	return &Handler{
		src:      src,
		producer: cfg.Export.ProducerRef,
		validFor: time.Duration(cfg.Tracking.PollIntervalMS) * time.Millisecond,
		now:      time.Now,
	}
}

// Register mounts the export routes on a gin engine.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/api/fleet/vehicle-monitoring.json", h.VehicleMonitoringJSON)
	r.GET("/api/fleet/vehicle-monitoring.xml", h.VehicleMonitoringXML)
	r.GET("/api/fleet/snapshot", h.FleetSnapshot)
}

func (h *Handler) VehicleMonitoringJSON(c *gin.Context) {
	devices, positions := h.src.Snapshot()
	res := BuildVehicleMonitoring(devices, positions, h.producer, h.validFor, h.now())
	c.Data(http.StatusOK, "application/json; charset=utf-8", BuildJSON(res))
}

func (h *Handler) VehicleMonitoringXML(c *gin.Context) {
	devices, positions := h.src.Snapshot()
	res := BuildVehicleMonitoring(devices, positions, h.producer, h.validFor, h.now())
	c.Data(http.StatusOK, "application/xml; charset=utf-8", BuildXML(res))
}

// FleetSnapshot returns the raw polled state for debugging dashboards.
func (h *Handler) FleetSnapshot(c *gin.Context) {
	devices, positions := h.src.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"devices":   devices,
		"positions": positions,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
