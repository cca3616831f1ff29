package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"slices"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/standup/internal/core/styles"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep runs Validate and then the checks that need I/O or parsing:
// config file accessibility, backend URL shape, user email and theme name.
// An empty configPath skips the config file check.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("backend.url", c.Backend.URL, isHTTPURL),
		criterio.Run("user_email", c.UserEmail, isEmailOrEmpty),
		criterio.Run("tui.theme", c.TUI.Theme, isKnownTheme),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.UserEmail == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "User",
			Message:  "user_email is not set; backend commands will require --user",
		})
	}

	if c.Cache.Disabled {
		warnings = append(warnings, ValidationWarning{
			Category: "Cache",
			Message:  "standup cache is disabled; every launch triggers a backend analysis",
		})
	}

	if c.Calendar.Days > 366 {
		warnings = append(warnings, ValidationWarning{
			Category: "Calendar",
			Item:     "days",
			Message:  fmt.Sprintf("requesting %d days of events may be slow", c.Calendar.Days),
		})
	}

	if u, err := url.Parse(c.Backend.URL); err == nil && u.Scheme == "http" && c.Backend.Token != "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Backend",
			Item:     "token",
			Message:  "bearer token is sent over plain http",
		})
	}

	return warnings
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func isHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func isEmailOrEmpty(s string) error {
	if s == "" {
		return nil
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return fmt.Errorf("invalid email %q", s)
	}
	return nil
}

func isKnownTheme(name string) error {
	if !slices.Contains(styles.ThemeNames(), name) {
		return fmt.Errorf("unknown theme %q (available: %v)", name, styles.ThemeNames())
	}
	return nil
}
