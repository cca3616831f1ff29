package doctor

import (
	"context"
	"errors"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/standup/internal/core/config"
)

// ConfigCheck validates the loaded configuration.
type ConfigCheck struct {
	cfg  *config.Config
	path string
}

func NewConfigCheck(cfg *config.Config, path string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, path: path}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context, _ bool) Result {
	result := Result{Name: c.Name()}

	err := c.cfg.ValidateDeep(c.path)
	var fieldErrs criterio.FieldErrors
	switch {
	case err == nil:
		result.add("config", StatusPass, c.path)
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			result.add(fe.Field, StatusFail, fe.Err.Error())
		}
	default:
		result.add("config", StatusFail, err.Error())
	}

	for _, w := range c.cfg.Warnings() {
		label := w.Category
		if w.Item != "" {
			label += " " + w.Item
		}
		result.add(label, StatusWarn, w.Message)
	}

	return result
}
