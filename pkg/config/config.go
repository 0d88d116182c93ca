// Package config loads typed configuration structs from environment
// variables, with an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrNilPointer    = errors.New("config: nil pointer provided to loader")
	ErrParsingFailed = errors.New("config: failed to parse environment variables")
)

var loadDotEnv sync.Once

// Load fills v from the environment based on `env` struct tags. The
// .env file, when present, is loaded once per process before the
// first parse; missing files are fine.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	loadDotEnv.Do(func() {
		_ = godotenv.Load()
	})
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingFailed, err)
	}
	return nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}
