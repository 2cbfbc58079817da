// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging constructs the process-wide zap logger.
package logging

import (
	"go.uber.org/zap"
)

// New returns a named logger. Development mode switches to the
// human-readable console encoder with debug level enabled.
func New(name string, development bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if development {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	if name != "" {
		logger = logger.Named(name)
	}
	return logger, nil
}
