package config

// ServerConfig contains the local HTTP server configuration
type ServerConfig struct {
	Port              int    `yaml:"port" validate:"gte=0"`
	StaticDir         string `yaml:"staticDir"`
	ShutdownTimeoutMS int    `yaml:"shutdownTimeoutMS" validate:"gte=0"`
}

// UpstreamConfig describes the tracking backend the relay forwards to
type UpstreamConfig struct {
	BaseURL    string `yaml:"baseURL" validate:"omitempty,url"`
	PathPrefix string `yaml:"pathPrefix"`
	TimeoutMS  int    `yaml:"timeoutMS" validate:"gte=0"`
}

// RelayConfig contains relay-specific knobs. When RedisAddr is empty the
// relay keeps upstream credentials in process memory.
type RelayConfig struct {
	ClientCookieName   string `yaml:"clientCookieName"`
	RedisAddr          string `yaml:"redisAddr"`
	RedisPassword      string `yaml:"redisPassword"`
	RedisDB            int    `yaml:"redisDB" validate:"gte=0"`
	RateLimitPerMinute int    `yaml:"rateLimitPerMinute" validate:"gte=0"`
}

// SessionConfig contains the client session lifecycle configuration
type SessionConfig struct {
	DurationMS int64  `yaml:"durationMS" validate:"gte=0"`
	StorePath  string `yaml:"storePath"`
}

// MapConfig carries the dispatcher map defaults surfaced to renderers
type MapConfig struct {
	DefaultLat  float64 `yaml:"defaultLat"`
	DefaultLon  float64 `yaml:"defaultLon"`
	DefaultZoom int     `yaml:"defaultZoom" validate:"gte=0"`
	SelectZoom  int     `yaml:"selectZoom" validate:"gte=0"`
}

// TrackingConfig contains the fleet synchronization configuration
type TrackingConfig struct {
	PollIntervalMS int       `yaml:"pollIntervalMS" validate:"gte=0"`
	Map            MapConfig `yaml:"map"`
}

// GTFSRTConfig points at an optional public GTFS-RT vehicle positions feed
// used as an alternative fleet source in watch mode
type GTFSRTConfig struct {
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
	TimeoutMS           int    `yaml:"timeoutMS" validate:"gte=0"`
}

// ExportConfig configures the SIRI VehicleMonitoring export
type ExportConfig struct {
	ProducerRef string `yaml:"producerRef"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server" validate:"required"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Relay    RelayConfig    `yaml:"relay"`
	Session  SessionConfig  `yaml:"session"`
	Tracking TrackingConfig `yaml:"tracking"`
	GTFSRT   GTFSRTConfig   `yaml:"gtfsrt"`
	Export   ExportConfig   `yaml:"export"`
}
