package config

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	structValidator *validator.Validate
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		structValidator = validator.New()
	})
	return structValidator
}

// Validate checks cfg against its `validate:"..."` struct tags.
func Validate(cfg *Config) error {
	if err := getValidator().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Registry.HeartbeatTimeout <= cfg.Registry.HeartbeatInterval {
		return fmt.Errorf("invalid configuration: registry.heartbeat_timeout must exceed registry.heartbeat_interval")
	}
	return nil
}
