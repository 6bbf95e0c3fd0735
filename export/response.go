package export

import (
	"encoding/json"
	"strconv"
	"strings"
)

// BuildJSON serializes a response document as JSON.
func BuildJSON(res *Response) []byte {
	b, _ := json.Marshal(res)
	return b
}

// BuildXML serializes a response document as SIRI-flavored XML.
func BuildXML(res *Response) []byte {
	var b strings.Builder
	b.WriteString("<Siri xmlns=\"http://www.siri.org.uk/siri\">")
	sd := res.Siri.ServiceDelivery
	b.WriteString("<ServiceDelivery>")
	if sd.ResponseTimestamp != "" {
		b.WriteString("<ResponseTimestamp>")
		b.WriteString(xmlEscape(sd.ResponseTimestamp))
		b.WriteString("</ResponseTimestamp>")
	}
	if sd.ProducerRef != "" {
		b.WriteString("<ProducerRef>")
		b.WriteString(xmlEscape(sd.ProducerRef))
		b.WriteString("</ProducerRef>")
	}
	for _, vm := range sd.VehicleMonitoringDelivery {
		writeVehicleMonitoringXML(&b, vm)
	}
	b.WriteString("</ServiceDelivery>")
	b.WriteString("</Siri>")
	return []byte(b.String())
}

func writeVehicleMonitoringXML(b *strings.Builder, vm VehicleMonitoring) {
	b.WriteString("<VehicleMonitoringDelivery>")
	if vm.ResponseTimestamp != "" {
		b.WriteString("<ResponseTimestamp>")
		b.WriteString(xmlEscape(vm.ResponseTimestamp))
		b.WriteString("</ResponseTimestamp>")
	}
	if vm.ValidUntil != "" {
		b.WriteString("<ValidUntil>")
		b.WriteString(xmlEscape(vm.ValidUntil))
		b.WriteString("</ValidUntil>")
	}
	for _, va := range vm.VehicleActivity {
		b.WriteString("<VehicleActivity>")
		if va.RecordedAtTime != "" {
			b.WriteString("<RecordedAtTime>")
			b.WriteString(xmlEscape(va.RecordedAtTime))
			b.WriteString("</RecordedAtTime>")
		}
		if va.ValidUntilTime != "" {
			b.WriteString("<ValidUntilTime>")
			b.WriteString(xmlEscape(va.ValidUntilTime))
			b.WriteString("</ValidUntilTime>")
		}
		writeMVJXML(b, va.MonitoredVehicleJourney)
		b.WriteString("</VehicleActivity>")
	}
	b.WriteString("</VehicleMonitoringDelivery>")
}

func writeMVJXML(b *strings.Builder, mvj MonitoredVehicleJourney) {
	b.WriteString("<MonitoredVehicleJourney>")
	if mvj.OperatorRef != "" {
		b.WriteString("<OperatorRef>")
		b.WriteString(xmlEscape(mvj.OperatorRef))
		b.WriteString("</OperatorRef>")
	}
	b.WriteString("<Monitored>")
	if mvj.Monitored {
		b.WriteString("true")
	} else {
		b.WriteString("false")
	}
	b.WriteString("</Monitored>")
	if mvj.DataSource != "" {
		b.WriteString("<DataSource>")
		b.WriteString(xmlEscape(mvj.DataSource))
		b.WriteString("</DataSource>")
	}
	if loc := mvj.VehicleLocation; loc != nil && (loc.Latitude != nil || loc.Longitude != nil) {
		b.WriteString("<VehicleLocation>")
		if loc.Latitude != nil {
			b.WriteString("<Latitude>")
			b.WriteString(strconv.FormatFloat(*loc.Latitude, 'f', 6, 64))
			b.WriteString("</Latitude>")
		}
		if loc.Longitude != nil {
			b.WriteString("<Longitude>")
			b.WriteString(strconv.FormatFloat(*loc.Longitude, 'f', 6, 64))
			b.WriteString("</Longitude>")
		}
		b.WriteString("</VehicleLocation>")
	}
	if mvj.Bearing != nil {
		b.WriteString("<Bearing>")
		b.WriteString(strconv.FormatFloat(*mvj.Bearing, 'f', 2, 64))
		b.WriteString("</Bearing>")
	}
	if mvj.Velocity != nil {
		b.WriteString("<Velocity>")
		b.WriteString(strconv.Itoa(*mvj.Velocity))
		b.WriteString("</Velocity>")
	}
	if mvj.VehicleStatus != "" {
		b.WriteString("<VehicleStatus>")
		b.WriteString(xmlEscape(mvj.VehicleStatus))
		b.WriteString("</VehicleStatus>")
	}
	if mvj.VehicleRef != "" {
		b.WriteString("<VehicleRef>")
		b.WriteString(xmlEscape(mvj.VehicleRef))
		b.WriteString("</VehicleRef>")
	}
	b.WriteString("</MonitoredVehicleJourney>")
}

func xmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}
