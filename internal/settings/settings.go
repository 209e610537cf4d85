// Package settings persists user preferences, both global
// (~/.automaker/settings.json) and per project
// (.automaker/settings.json). Project settings overlay global ones
// field by field; unset fields inherit. Throttling overrides are
// applied to the fsio registry at load time.
package settings

import (
	"time"

	"github.com/automaker/store/internal/fsio"
)

// Settings holds user preferences. Zero values mean "inherit": an
// empty string or nil pointer in a project file falls back to the
// global value, which falls back to the defaults.
type Settings struct {
	// Theme selects the UI theme by name.
	Theme string `json:"theme,omitempty"`
	// DefaultAgent is the agent profile new features start with.
	DefaultAgent string `json:"default_agent,omitempty"`
	// AutoArchive moves completed features to history automatically.
	AutoArchive *bool `json:"auto_archive,omitempty"`
	// Throttling overrides the I/O layer tuning parameters.
	Throttling *ThrottlingSettings `json:"throttling,omitempty"`
}

// ThrottlingSettings mirrors fsio.ThrottlingUpdate in settings-file
// form: delays are plain milliseconds, nil fields keep the current
// value.
type ThrottlingSettings struct {
	MaxConcurrency *int `json:"max_concurrency,omitempty"`
	MaxRetries     *int `json:"max_retries,omitempty"`
	BaseDelayMS    *int `json:"base_delay_ms,omitempty"`
	MaxDelayMS     *int `json:"max_delay_ms,omitempty"`
}

// Default returns the settings used when no file overrides a field.
func Default() *Settings {
	auto := true
	return &Settings{
		Theme:        "system",
		DefaultAgent: "default",
		AutoArchive:  &auto,
	}
}

// Merge overlays override onto base and returns the result. Fields
// the override leaves unset keep the base value; throttling overrides
// merge field by field as well.
func Merge(base, override *Settings) *Settings {
	if base == nil {
		base = &Settings{}
	}
	merged := *base
	if override == nil {
		return &merged
	}

	if override.Theme != "" {
		merged.Theme = override.Theme
	}
	if override.DefaultAgent != "" {
		merged.DefaultAgent = override.DefaultAgent
	}
	if override.AutoArchive != nil {
		merged.AutoArchive = override.AutoArchive
	}
	if override.Throttling != nil {
		merged.Throttling = mergeThrottling(base.Throttling, override.Throttling)
	}
	return &merged
}

func mergeThrottling(base, override *ThrottlingSettings) *ThrottlingSettings {
	if base == nil {
		base = &ThrottlingSettings{}
	}
	merged := *base
	if override.MaxConcurrency != nil {
		merged.MaxConcurrency = override.MaxConcurrency
	}
	if override.MaxRetries != nil {
		merged.MaxRetries = override.MaxRetries
	}
	if override.BaseDelayMS != nil {
		merged.BaseDelayMS = override.BaseDelayMS
	}
	if override.MaxDelayMS != nil {
		merged.MaxDelayMS = override.MaxDelayMS
	}
	return &merged
}

// ApplyThrottling pushes the throttling overrides, if any, into the
// fsio registry. Invalid overrides are rejected by the registry and
// reported; the previous configuration stays in effect.
func (s *Settings) ApplyThrottling() error {
	if s == nil || s.Throttling == nil {
		return nil
	}

	update := fsio.ThrottlingUpdate{
		MaxConcurrency: s.Throttling.MaxConcurrency,
		MaxRetries:     s.Throttling.MaxRetries,
	}
	if s.Throttling.BaseDelayMS != nil {
		d := time.Duration(*s.Throttling.BaseDelayMS) * time.Millisecond
		update.BaseDelay = &d
	}
	if s.Throttling.MaxDelayMS != nil {
		d := time.Duration(*s.Throttling.MaxDelayMS) * time.Millisecond
		update.MaxDelay = &d
	}
	return fsio.Configure(update)
}
