// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Defaults mirror the constants the dispatcher frontend ships with: the
// relay listens on :3000, forwards under /api, and sessions last 8 hours.
package config
