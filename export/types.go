package export

import "github.com/theoremus-urban-solutions/transit-types/siri"

// Response is the top-level export document.
type Response struct {
	Siri ServiceDeliveryWrapper `json:"Siri"`
}

// ServiceDeliveryWrapper wraps the ServiceDelivery element.
type ServiceDeliveryWrapper struct {
	ServiceDelivery ServiceDelivery `json:"ServiceDelivery"`
}

// ServiceDelivery carries the delivery types this exporter can produce.
// Only vehicle monitoring is ever populated; the other slices stay empty.
type ServiceDelivery struct {
	ResponseTimestamp          string                            `json:"ResponseTimestamp"`
	ProducerRef                string                            `json:"ProducerRef,omitempty"`
	VehicleMonitoringDelivery  []VehicleMonitoring               `json:"VehicleMonitoringDelivery"`
	SituationExchangeDelivery  []SituationExchangeDelivery       `json:"SituationExchangeDelivery"`
	EstimatedTimetableDelivery []siri.EstimatedTimetableDelivery `json:"EstimatedTimetableDelivery"`
}

// SituationExchangeDelivery represents the SIRI-SX delivery structure
type SituationExchangeDelivery struct {
	Version           string               `json:"version"`
	ResponseTimestamp string               `json:"ResponseTimestamp"`
	Situations        []PtSituationElement `json:"Situations"`
}

// PtSituationElement represents a single situation (alert/disruption)
type PtSituationElement struct {
	SituationNumber string `json:"SituationNumber"`
	Severity        string `json:"Severity,omitempty"`
	Summary         string `json:"Summary,omitempty"`
	Description     string `json:"Description,omitempty"`
}

// VehicleMonitoring represents the VehicleMonitoring delivery
type VehicleMonitoring struct {
	ResponseTimestamp string                 `json:"ResponseTimestamp"`
	ValidUntil        string                 `json:"ValidUntil"`
	VehicleActivity   []VehicleActivityEntry `json:"VehicleActivity"`
}

// VehicleActivityEntry represents a single vehicle's activity
type VehicleActivityEntry struct {
	RecordedAtTime          string                  `json:"RecordedAtTime"`
	ValidUntilTime          string                  `json:"ValidUntilTime,omitempty"`
	MonitoredVehicleJourney MonitoredVehicleJourney `json:"MonitoredVehicleJourney"`
}

// MonitoredVehicleJourney contains details about a monitored vehicle
type MonitoredVehicleJourney struct {
	OperatorRef     string           `json:"OperatorRef,omitempty"`
	Monitored       bool             `json:"Monitored"`
	DataSource      string           `json:"DataSource"`
	VehicleLocation *VehicleLocation `json:"VehicleLocation"`
	Bearing         *float64         `json:"Bearing,omitempty"`
	Velocity        *int             `json:"Velocity,omitempty"`
	VehicleStatus   string           `json:"VehicleStatus,omitempty"`
	VehicleRef      string           `json:"VehicleRef"`
}

// VehicleLocation represents the geographical location of a vehicle
type VehicleLocation struct {
	Latitude  *float64 `json:"Latitude"`
	Longitude *float64 `json:"Longitude"`
}
