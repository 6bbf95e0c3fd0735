// Package tracking synchronizes polled fleet data with a rendered map view.
// The Engine owns the device, position and marker state, Reconcile turns a
// poll result into render instructions, and Poller drives refresh cycles on
// an interval.
package tracking
