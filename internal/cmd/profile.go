package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultServerURL      = "http://localhost:3000"
	defaultTimeoutSeconds = 15
)

// Profile is the user's transitctl settings file
type Profile struct {
	ServerURL           string `toml:"server_url"`
	DefaultStation      string `toml:"default_station"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
}

// LoadProfile reads a TOML profile. An empty path, or a missing file when
// required is false, yields the defaults.
func LoadProfile(path string, required bool) (Profile, error) {
	var p Profile
	if path != "" {
		_, err := toml.DecodeFile(path, &p)
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist) && !required:
		default:
			return Profile{}, fmt.Errorf("reading profile %s: %w", path, err)
		}
	}

	if p.ServerURL == "" {
		p.ServerURL = defaultServerURL
	}
	if p.PollIntervalSeconds < 0 {
		return Profile{}, fmt.Errorf("poll_interval_seconds must not be negative")
	}
	if p.TimeoutSeconds <= 0 {
		p.TimeoutSeconds = defaultTimeoutSeconds
	}
	return p, nil
}

// PollInterval is zero when unset so the poller default applies
func (p Profile) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalSeconds) * time.Second
}

func (p Profile) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}
