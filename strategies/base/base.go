package base

import (
	"errors"
	"fmt"
)

// ErrInvalidCustomSettings is raised when bad custom settings are found in a
// strategy config
var ErrInvalidCustomSettings = errors.New("invalid custom settings")

// Strategy is the base implementation shared by all strategies
type Strategy struct{}

// SetCustomSettings rejects any custom settings for strategies that do not
// accept them
func (s *Strategy) SetCustomSettings(settings map[string]any) error {
	if len(settings) > 0 {
		return fmt.Errorf("%w: strategy does not support custom settings", ErrInvalidCustomSettings)
	}
	return nil
}
