package module

import (
	"time"

	"scandesk/internal/core/router"
	"scandesk/internal/core/scan"
	"scandesk/internal/platform/config"
	"scandesk/internal/services/station/service"
)

// Options controls classifier tunables and station lifecycle
type Options struct {
	Scan   scan.Options
	Router router.Options

	FeedSize      int           // events retained per station
	IdleTTL       time.Duration // idle stations are closed after this; 0 disables
	SweepEvery    time.Duration // janitor interval
	MaxStations   int           // 0 means unlimited
	ManualTimeout time.Duration // cap on one manual scan long poll

	// OperatorTokens maps bearer token to operator name; empty leaves routes open
	OperatorTokens map[string]string
}

// ScanFromConfig reads SCAN_* tunables
func ScanFromConfig(cfg config.Conf) (scan.Options, router.Options) {
	sc := cfg.Prefix("SCAN_")
	d := scan.DefaultOptions()
	so := scan.Options{
		SpeedThreshold:  sc.MayDuration("SPEED_THRESHOLD", d.SpeedThreshold),
		MinScanLength:   sc.MayInt("MIN_LENGTH", d.MinScanLength),
		StaleTimeout:    sc.MayDuration("STALE_TIMEOUT", d.StaleTimeout),
		AutoSubmitDelay: sc.MayDuration("AUTO_SUBMIT_DELAY", d.AutoSubmitDelay),
		DebugMode:       sc.MayBool("DEBUG_MODE", false),
		FastRatio:       sc.MayFloat64("FAST_RATIO", d.FastRatio),
		Percentile:      sc.MayFloat64("PERCENTILE", d.Percentile),
	}
	ro := router.Options{
		ScanningPrefix: sc.MayString("SCANNING_PREFIX", router.DefaultScanningPrefix),
		FoldWidth:      sc.MayBool("ROUTER_FOLD_WIDTH", false),
	}
	return so.Normalize(), ro
}

// FromConfig reads SCAN_* and STATION_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	so, ro := ScanFromConfig(cfg)
	st := cfg.Prefix("STATION_")
	return Options{
		Scan:          so,
		Router:        ro,
		FeedSize:      st.MayInt("FEED_SIZE", service.DefaultFeedSize),
		IdleTTL:       st.MayDuration("IDLE_TTL", 30*time.Minute),
		SweepEvery:    st.MayDuration("SWEEP_EVERY", time.Minute),
		MaxStations:   st.MayInt("MAX", 0),
		ManualTimeout: st.MayDuration("MANUAL_TIMEOUT", 25*time.Second),

		OperatorTokens: parseOperatorTokens(st.MayCSV("OPERATOR_TOKENS", nil)),
	}
}

func (o Options) service() service.Config {
	return service.Config{
		Scan:          o.Scan,
		Router:        o.Router,
		FeedSize:      o.FeedSize,
		IdleTTL:       o.IdleTTL,
		MaxStations:   o.MaxStations,
		ManualTimeout: o.ManualTimeout,
	}
}
