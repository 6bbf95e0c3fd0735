// Package relay implements the session-relay proxy between the dispatcher
// browser page and the cookie-authenticated upstream tracking API.
//
// The browser talks plain credentialed fetches; the relay translates them
// into upstream-cookie requests. Upstream credentials are keyed by a
// relay-issued opaque client cookie, so concurrent distinct logins through
// one relay stay isolated. A captured Set-Cookie replaces the caller's
// stored credential and is re-emitted to the browser unchanged.
package relay
