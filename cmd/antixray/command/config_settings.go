package command

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-antixray/internal/config"
	"github.com/pixil98/go-antixray/internal/messages"
)

const (
	defaultSettingsFile = "settings.yml"
	defaultMessagesFile = "messages.yml"
)

type SettingsConfig struct {
	Path         string `json:"path"`
	MessagesPath string `json:"messages_path"`
}

func (c *SettingsConfig) validate() error {
	el := errors.NewErrorList()

	for name, p := range map[string]string{"path": c.Path, "messages_path": c.MessagesPath} {
		if p != "" && filepath.Ext(p) != ".yml" && filepath.Ext(p) != ".yaml" {
			el.Add(fmt.Errorf("settings %s: %q is not a yaml file", name, p))
		}
	}

	return el.Err()
}

func (c *SettingsConfig) settingsPath() string {
	if c.Path == "" {
		return defaultSettingsFile
	}
	return c.Path
}

func (c *SettingsConfig) messagesPath() string {
	if c.MessagesPath == "" {
		return defaultMessagesFile
	}
	return c.MessagesPath
}

// loadSettings reads the settings document, writing the defaults if there is none.
func (c *SettingsConfig) loadSettings() (config.Settings, error) {
	s, err := config.Load(c.settingsPath())
	if err != nil {
		return s, fmt.Errorf("loading settings: %w", err)
	}
	return s, nil
}

// buildCatalog loads the message texts. Broken overrides fall back to the built-in text.
func (c *SettingsConfig) buildCatalog() *messages.Catalog {
	catalog := messages.NewCatalog()
	err := catalog.Load(c.messagesPath())
	if err != nil {
		slog.Warn("some messages were not loaded", "path", c.messagesPath(), "error", err)
	}
	return catalog
}
