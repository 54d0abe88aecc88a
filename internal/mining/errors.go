package mining

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig matches every ConfigError via errors.Is.
var ErrInvalidConfig = errors.New("invalid mining configuration")

// ErrSearchBudgetExceeded is returned when the depth-bounded search visits
// more nodes than Thresholds.MaxNodes allows.
var ErrSearchBudgetExceeded = errors.New("search node budget exceeded")

// ConfigError reports a threshold that cannot be mined with.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
