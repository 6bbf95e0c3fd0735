package export

import (
	"time"

	"fleetwatch/fleet"
	"fleetwatch/utils"
)

// BuildVehicleMonitoring assembles a vehicle monitoring document from the
// last polled fleet snapshot. Positions whose device is no longer known are
// skipped. The delivery is valid for validFor from now.
func BuildVehicleMonitoring(devices []fleet.Device, positions []fleet.Position, producerRef string, validFor time.Duration, now time.Time) *Response {
	byID := make(map[int]fleet.Device, len(devices))
	for _, d := range devices {
		byID[d.ID] = d
	}

	ts := utils.Iso8601FromTime(now)
	validUntil := utils.Iso8601FromTime(now.Add(validFor))

	activity := make([]VehicleActivityEntry, 0, len(positions))
	for _, p := range positions {
		device, ok := byID[p.DeviceID]
		if !ok {
			continue
		}
		lat, lon := p.Latitude, p.Longitude
		mvj := MonitoredVehicleJourney{
			OperatorRef:     producerRef,
			Monitored:       device.Status == fleet.StatusOnline,
			DataSource:      producerRef,
			VehicleLocation: &VehicleLocation{Latitude: &lat, Longitude: &lon},
			Bearing:         p.Course,
			VehicleStatus:   vehicleStatus(device),
			VehicleRef:      device.UniqueID,
		}
		if p.Speed != nil {
			v := int(*p.Speed)
			mvj.Velocity = &v
		}
		activity = append(activity, VehicleActivityEntry{
			RecordedAtTime:          utils.Iso8601FromTime(p.FixTime),
			ValidUntilTime:          validUntil,
			MonitoredVehicleJourney: mvj,
		})
	}

	return &Response{
		Siri: ServiceDeliveryWrapper{
			ServiceDelivery: ServiceDelivery{
				ResponseTimestamp: ts,
				ProducerRef:       producerRef,
				VehicleMonitoringDelivery: []VehicleMonitoring{{
					ResponseTimestamp: ts,
					ValidUntil:        validUntil,
					VehicleActivity:   activity,
				}},
			},
		},
	}
}

func vehicleStatus(d fleet.Device) string {
	if d.Status == fleet.StatusOnline {
		return "inProgress"
	}
	return "notMonitored"
}
