package depot

import (
	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
)

// Config holds sizing and logging settings for a World.
type Config struct {
	// EntityCapacity bounds the total number of entity slots a World can allocate.
	EntityCapacity int `config:"DEPOT_ENTITY_CAPACITY"`
	// ComponentCapacity is the default capacity for component storages that
	// don't override it at registration.
	ComponentCapacity int `config:"DEPOT_COMPONENT_CAPACITY"`
	// LogLevel is a zerolog level string ("debug", "info", ...). Anything
	// unparseable disables logging.
	LogLevel string `config:"DEPOT_LOG_LEVEL"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		EntityCapacity:    4096,
		ComponentCapacity: 4096,
		LogLevel:          "disabled",
	}
}

// LoadConfig reads Config from the environment, falling back to defaults
// for unset variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := config.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to load config from env")
	}
	return cfg, nil
}
