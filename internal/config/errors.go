package config

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig           = errors.New("invalid config")
	ErrLoadConfig              = errors.New("load config failed")
	ErrMissingRobotDescription = errors.New("robot_description is required")
)
