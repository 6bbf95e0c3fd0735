// Package utils provides small shared helpers for fleetwatch.
//
// It contains time formatting utilities used by the SIRI export and the
// tracking snapshot endpoints.
package utils
