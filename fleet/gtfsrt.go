package fleet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// GTFSRTSource adapts a public GTFS-RT VehiclePositions feed into the fleet
// model. Public feeds carry no session, so the source needs neither the
// relay nor a login; every reporting vehicle becomes an online device with a
// synthetic numeric id that stays stable for the lifetime of the source.
type GTFSRTSource struct {
	url        string
	httpClient *http.Client

	mu        sync.Mutex
	ids       map[string]int
	nextID    int
	devices   []Device
	positions []Position
}

// NewGTFSRTSource creates a source polling the given VehiclePositions URL.
func NewGTFSRTSource(url string, timeout time.Duration) *GTFSRTSource {
	return &GTFSRTSource{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		ids:        map[string]int{},
		nextID:     1,
	}
}

// Devices fetches and decodes the feed, refreshing the internal snapshot.
func (s *GTFSRTSource) Devices(ctx context.Context) ([]Device, error) {
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Device, len(s.devices))
	copy(out, s.devices)
	return out, nil
}

// Positions serves from the snapshot the preceding Devices call produced, so
// both halves of a sync cycle reflect the same feed read.
func (s *GTFSRTSource) Positions(ctx context.Context, deviceIDs ...int) ([]Position, error) {
	s.mu.Lock()
	stale := s.positions == nil
	s.mu.Unlock()
	if stale {
		if err := s.refresh(ctx); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(deviceIDs) == 0 {
		out := make([]Position, len(s.positions))
		copy(out, s.positions)
		return out, nil
	}
	wanted := make(map[int]bool, len(deviceIDs))
	for _, id := range deviceIDs {
		wanted[id] = true
	}
	out := make([]Position, 0, len(deviceIDs))
	for _, p := range s.positions {
		if wanted[p.DeviceID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *GTFSRTSource) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gtfs-rt: HTTP %d from %s", resp.StatusCode, s.url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransportError(err)
	}

	var feed gtfs.FeedMessage
	if err := proto.Unmarshal(body, &feed); err != nil {
		return fmt.Errorf("gtfs-rt: decode feed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	devices := make([]Device, 0, len(feed.Entity))
	positions := make([]Position, 0, len(feed.Entity))
	for _, ent := range feed.Entity {
		if ent == nil || ent.Vehicle == nil {
			continue
		}
		vp := ent.Vehicle
		if vp.Vehicle == nil || vp.Position == nil {
			continue
		}
		label := vp.Vehicle.GetId()
		if label == "" {
			label = vp.Vehicle.GetLabel()
		}
		if label == "" {
			continue
		}
		id, ok := s.ids[label]
		if !ok {
			id = s.nextID
			s.nextID++
			s.ids[label] = id
		}
		name := vp.Vehicle.GetLabel()
		if name == "" {
			name = label
		}
		devices = append(devices, Device{
			ID:       id,
			UniqueID: label,
			Name:     name,
			Status:   StatusOnline,
		})

		pos := Position{
			DeviceID:  id,
			Latitude:  float64(vp.Position.GetLatitude()),
			Longitude: float64(vp.Position.GetLongitude()),
			FixTime:   time.Now().UTC(),
		}
		if vp.Timestamp != nil {
			pos.FixTime = time.Unix(int64(vp.GetTimestamp()), 0).UTC()
		}
		if vp.Position.Speed != nil {
			// GTFS-RT reports meters per second.
			kmh := float64(vp.Position.GetSpeed()) * 3.6
			pos.Speed = &kmh
		}
		if vp.Position.Bearing != nil {
			course := float64(vp.Position.GetBearing())
			pos.Course = &course
		}
		positions = append(positions, pos)
	}
	s.devices = devices
	s.positions = positions
	return nil
}
