package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// parseFile overlays cfg with the config file at path (format chosen by
// extension) and then with environment variables. With an empty path only
// the environment is read. Unset keys keep their current values.
func parseFile(cfg *Config, path string) error {
	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("read env: %w", err)
		}
		return nil
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}
