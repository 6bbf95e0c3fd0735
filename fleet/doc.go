// Package fleet contains the domain model and data sources for the tracked
// vehicle fleet.
//
// It provides:
//   - Device, Position and User types mirroring the upstream tracking API
//   - the error taxonomy shared by login and data-fetch operations
//   - Client, a timed HTTP client speaking to the session relay
//   - GTFSRTSource, an adapter exposing a public GTFS-RT VehiclePositions
//     feed through the same Source interface
package fleet
