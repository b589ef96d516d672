package httpcache

import "time"

// Config holds the tunable cache and timeout parameters from spec §6's
// [cache.*] configuration sections. Every field has a spec-mandated
// default applied by DefaultConfig.
type Config struct {
	ContentSuccessTTL time.Duration
	ContentErrorTTL   time.Duration
	ContentNetworkTTL time.Duration
	ContentMaxBytes   int

	ProbeSuccessTTL time.Duration
	ProbeErrorTTL   time.Duration
	ProbeMaxEntries int

	RobotsTTL            time.Duration
	RobotsMaxEntries     int
	RobotsRequestTimeout time.Duration
	UserAgent            string

	ProbeTimeout    time.Duration
	RetrieveTimeout time.Duration

	// PerHostConcurrency bounds simultaneous in-flight requests to one
	// host (spec §5, default 8).
	PerHostConcurrency int
}

// DefaultConfig returns the defaults specified in spec §4.1 and §5.
func DefaultConfig() Config {
	return Config{
		ContentSuccessTTL: 300 * time.Second,
		ContentErrorTTL:   60 * time.Second,
		ContentNetworkTTL: 10 * time.Second,
		ContentMaxBytes:   32 * 1024 * 1024,

		ProbeSuccessTTL: 300 * time.Second,
		ProbeErrorTTL:   60 * time.Second,
		ProbeMaxEntries: 1000,

		RobotsTTL:            24 * time.Hour,
		RobotsMaxEntries:     500,
		RobotsRequestTimeout: 5 * time.Second,
		UserAgent:            "librovore/1.0",

		ProbeTimeout:    10 * time.Second,
		RetrieveTimeout: 30 * time.Second,

		PerHostConcurrency: 8,
	}
}
