// Package export publishes the polled fleet state as SIRI vehicle
// monitoring documents, in JSON and XML, over HTTP.
package export
