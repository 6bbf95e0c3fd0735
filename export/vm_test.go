package export

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"fleetwatch/config"
	"fleetwatch/fleet"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testFleet() ([]fleet.Device, []fleet.Position) {
	speed := 36.0
	course := 90.0
	devices := []fleet.Device{
		{ID: 1, UniqueID: "bus-101", Name: "Bus 101", Status: fleet.StatusOnline},
		{ID: 2, UniqueID: "bus-202", Name: "Bus 202", Status: fleet.StatusOffline},
	}
	positions := []fleet.Position{
		{
			DeviceID: 1, Latitude: 47.5, Longitude: 19.04,
			Speed: &speed, Course: &course,
			FixTime: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			DeviceID: 2, Latitude: 47.6, Longitude: 19.1,
			FixTime: time.Date(2024, 6, 1, 9, 58, 0, 0, time.UTC),
		},
		// orphan, no matching device
		{DeviceID: 99, Latitude: 0, Longitude: 0, FixTime: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
	}
	return devices, positions
}

// TestBuildVehicleMonitoring tests document assembly from a fleet snapshot
func TestBuildVehicleMonitoring(t *testing.T) {
	devices, positions := testFleet()
	now := time.Date(2024, 6, 1, 10, 0, 30, 0, time.UTC)

	res := BuildVehicleMonitoring(devices, positions, "FLEETWATCH", 30*time.Second, now)

	sd := res.Siri.ServiceDelivery
	if sd.ResponseTimestamp != "2024-06-01T10:00:30Z" {
		t.Errorf("ResponseTimestamp = %q", sd.ResponseTimestamp)
	}
	if sd.ProducerRef != "FLEETWATCH" {
		t.Errorf("ProducerRef = %q", sd.ProducerRef)
	}
	if len(sd.VehicleMonitoringDelivery) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(sd.VehicleMonitoringDelivery))
	}

	vm := sd.VehicleMonitoringDelivery[0]
	if vm.ValidUntil != "2024-06-01T10:01:00Z" {
		t.Errorf("ValidUntil = %q", vm.ValidUntil)
	}
	if len(vm.VehicleActivity) != 2 {
		t.Fatalf("activity = %d, orphan position should be skipped", len(vm.VehicleActivity))
	}

	first := vm.VehicleActivity[0]
	if first.RecordedAtTime != "2024-06-01T10:00:00Z" {
		t.Errorf("RecordedAtTime = %q", first.RecordedAtTime)
	}
	mvj := first.MonitoredVehicleJourney
	if mvj.VehicleRef != "bus-101" {
		t.Errorf("VehicleRef = %q", mvj.VehicleRef)
	}
	if !mvj.Monitored || mvj.VehicleStatus != "inProgress" {
		t.Errorf("online device: Monitored=%v Status=%q", mvj.Monitored, mvj.VehicleStatus)
	}
	if mvj.Velocity == nil || *mvj.Velocity != 36 {
		t.Errorf("Velocity = %v", mvj.Velocity)
	}
	if mvj.VehicleLocation == nil || *mvj.VehicleLocation.Latitude != 47.5 {
		t.Errorf("VehicleLocation = %+v", mvj.VehicleLocation)
	}

	second := vm.VehicleActivity[1].MonitoredVehicleJourney
	if second.Monitored || second.VehicleStatus != "notMonitored" {
		t.Errorf("offline device: Monitored=%v Status=%q", second.Monitored, second.VehicleStatus)
	}
}

// TestBuildJSON tests JSON serialization of the document
func TestBuildJSON(t *testing.T) {
	devices, positions := testFleet()
	now := time.Date(2024, 6, 1, 10, 0, 30, 0, time.UTC)
	res := BuildVehicleMonitoring(devices, positions, "FLEETWATCH", 30*time.Second, now)

	data := BuildJSON(res)
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := decoded["Siri"]; !ok {
		t.Error("missing top-level Siri element")
	}

	// the unused delivery slots stay declared in the document
	var roundtrip Response
	if err := json.Unmarshal(data, &roundtrip); err != nil {
		t.Fatalf("decode into Response: %v", err)
	}
	sd := roundtrip.Siri.ServiceDelivery
	if len(sd.SituationExchangeDelivery) != 0 || len(sd.EstimatedTimetableDelivery) != 0 {
		t.Errorf("non-VM deliveries populated: %d SX, %d ET",
			len(sd.SituationExchangeDelivery), len(sd.EstimatedTimetableDelivery))
	}
}

// TestBuildXML tests XML serialization and escaping
func TestBuildXML(t *testing.T) {
	devices := []fleet.Device{
		{ID: 1, UniqueID: "a&b<c", Name: "Tricky", Status: fleet.StatusOnline},
	}
	positions := []fleet.Position{
		{DeviceID: 1, Latitude: 47.5, Longitude: 19.04, FixTime: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
	}
	now := time.Date(2024, 6, 1, 10, 0, 30, 0, time.UTC)
	res := BuildVehicleMonitoring(devices, positions, "FLEETWATCH", 30*time.Second, now)

	out := string(BuildXML(res))
	if !strings.HasPrefix(out, "<Siri xmlns=\"http://www.siri.org.uk/siri\">") {
		t.Errorf("missing SIRI root: %q", out[:40])
	}
	if !strings.Contains(out, "<VehicleRef>a&amp;b&lt;c</VehicleRef>") {
		t.Error("special characters not escaped")
	}
	if !strings.Contains(out, "<Latitude>47.500000</Latitude>") {
		t.Error("missing vehicle location")
	}
	if !strings.Contains(out, "<ProducerRef>FLEETWATCH</ProducerRef>") {
		t.Error("missing producer ref")
	}
}

type staticSnapshot struct {
	devices   []fleet.Device
	positions []fleet.Position
}

func (s staticSnapshot) Snapshot() ([]fleet.Device, []fleet.Position) {
	return s.devices, s.positions
}

func testHandler() *Handler {
	devices, positions := testFleet()
	cfg := config.AppConfig{
		Tracking: config.TrackingConfig{PollIntervalMS: 30000},
		Export:   config.ExportConfig{ProducerRef: "FLEETWATCH"},
	}
	return NewHandler(staticSnapshot{devices, positions}, cfg)
}

// TestHandler_JSONEndpoint tests the JSON monitoring route
func TestHandler_JSONEndpoint(t *testing.T) {
	engine := gin.New()
	testHandler().Register(engine)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fleet/vehicle-monitoring.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	var decoded Response
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Siri.ServiceDelivery.VehicleMonitoringDelivery) != 1 {
		t.Error("missing vehicle monitoring delivery")
	}
}

// TestHandler_XMLEndpoint tests the XML monitoring route
func TestHandler_XMLEndpoint(t *testing.T) {
	engine := gin.New()
	testHandler().Register(engine)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fleet/vehicle-monitoring.xml", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<VehicleMonitoringDelivery>") {
		t.Error("missing delivery element")
	}
}

// TestHandler_SnapshotEndpoint tests the raw snapshot route
func TestHandler_SnapshotEndpoint(t *testing.T) {
	engine := gin.New()
	testHandler().Register(engine)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fleet/snapshot", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		Devices   []fleet.Device   `json:"devices"`
		Positions []fleet.Position `json:"positions"`
		Timestamp string           `json:"timestamp"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Devices) != 2 || len(payload.Positions) != 3 {
		t.Errorf("snapshot = %d devices, %d positions", len(payload.Devices), len(payload.Positions))
	}
	if payload.Timestamp == "" {
		t.Error("missing timestamp")
	}
}
