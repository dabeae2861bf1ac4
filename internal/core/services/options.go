package services

import "github.com/rs/zerolog"

// Option configures the program service. If left empty, defaults will be used.
type Option func(s *programService)

// WithLogger sets the structured logger. Defaults to JSON on stdout.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *programService) {
		s.logger = logger
	}
}
