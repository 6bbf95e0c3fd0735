package fleet

import "context"

// Source supplies the device and position lists one synchronization cycle
// consumes. The sync engine awaits Devices before calling Positions, so
// implementations may serve Positions from the snapshot Devices produced.
type Source interface {
	Devices(ctx context.Context) ([]Device, error)
	Positions(ctx context.Context, deviceIDs ...int) ([]Position, error)
}
