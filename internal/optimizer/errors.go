package optimizer

import "fmt"

// ConfigError reports invalid Optimize arguments. It is the only error Optimize returns.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid optimizer config: %s %s", e.Field, e.Message)
}
