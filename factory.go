package depot

type factory struct{}

// Factory constructs the package's top-level objects.
var Factory factory

// NewWorld creates an empty World with the given configuration.
func (f factory) NewWorld(cfg Config) *World {
	return newWorld(cfg)
}

// NewWorldFromEnv creates a World configured from the environment, falling
// back to defaults for unset variables.
func (f factory) NewWorldFromEnv() (*World, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return newWorld(cfg), nil
}

// NewRegistry creates a standalone entity registry. Worlds create their own;
// this is for hosts that only need handle issuance and liveness tracking.
func (f factory) NewRegistry(capacity int) *EntityRegistry {
	return newEntityRegistry(capacity)
}
