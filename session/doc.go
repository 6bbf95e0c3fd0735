// Package session tracks the client-side authenticated-session lifecycle.
//
// The expiry check is a pure wall-clock comparison against a stored
// absolute instant; clock changes on the client are not compensated for.
package session
