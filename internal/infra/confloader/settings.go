package confloader

import (
	"fmt"
	"net"
	"strconv"

	"github.com/caarlos0/env/v11"
)

// Settings is a typed view over the well-known keys of a Mapping.
type Settings struct {
	DSN           string `env:"SYSTEM_VALIDATOR_DSN,required"`
	APIBindHost   string `env:"API_BIND_HOST" envDefault:"0.0.0.0"`
	APIBindPort   int    `env:"API_BIND_PORT" envDefault:"8000"`
	UIDistDir     string `env:"UI_DIST_DIR"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	BlueGreenSlot string `env:"BLUEGREEN_SLOT" envDefault:"blue"`
}

// BindAddr returns host:port for the API listener.
func (s Settings) BindAddr() string {
	return net.JoinHostPort(s.APIBindHost, strconv.Itoa(s.APIBindPort))
}

// Settings binds the mapping's scalar values into a Settings struct.
// The process environment is not consulted.
func (m Mapping) Settings() (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, env.Options{Environment: m.environment()}); err != nil {
		return Settings{}, fmt.Errorf("bind settings: %w", err)
	}
	return s, nil
}

// environment renders scalar entries as strings. Null, mapping and
// sequence values are left out.
func (m Mapping) environment() map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.Text(); ok {
			out[k] = s
		}
	}
	return out
}
