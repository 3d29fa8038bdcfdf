package module

import (
	"time"

	"orderlens/internal/platform/config"
	"orderlens/internal/platform/metrics"
	"orderlens/internal/services/jobs/service"
)

// Options configures the jobs module
type Options struct {
	ListLimit int
	Timeout   time.Duration
	Memory    bool // force the in-process store even when Postgres is configured

	Metrics *metrics.Registry
}

// FromConfig reads options from config.Conf
func FromConfig(cfg config.Conf) Options {
	jc := cfg.Prefix("JOBS_")
	return Options{
		ListLimit: jc.MayPositiveInt("LIST_LIMIT", service.DefaultListLimit),
		Timeout:   jc.MayDuration("TIMEOUT", service.DefaultTimeout),
		Memory:    jc.MayBool("MEMORY", false),
	}
}
