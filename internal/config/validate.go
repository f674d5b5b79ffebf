package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var knownStrategies = map[string]struct{}{
	"oldest":          {},
	"newest":          {},
	"folder-priority": {},
	"largest":         {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScanner(); err != nil {
		return err
	}
	if err := c.validateReconcile(); err != nil {
		return err
	}
	if err := c.validateDedupe(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScanner() error {
	if len(c.Scanner.Extensions) == 0 {
		return errors.New("scanner.extensions must list at least one extension")
	}
	for _, ext := range c.Scanner.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("scanner.extensions: %q is not a valid extension", ext)
		}
	}
	if c.Scanner.HashPrefixBytes <= 0 {
		return errors.New("scanner.hash_prefix_bytes must be positive")
	}
	return nil
}

func (c *Config) validateReconcile() error {
	if c.Reconcile.BatchSize <= 0 {
		return errors.New("reconcile.batch_size must be positive")
	}
	return nil
}

func (c *Config) validateDedupe() error {
	if _, ok := knownStrategies[c.Dedupe.Strategy]; !ok {
		return fmt.Errorf("dedupe.strategy %q is unknown (use oldest, newest, folder-priority, or largest)", c.Dedupe.Strategy)
	}
	if utf8.RuneCountInString(c.Dedupe.Marker) != 1 {
		return fmt.Errorf("dedupe.marker must be a single character, got %q", c.Dedupe.Marker)
	}
	if c.Dedupe.Strategy == "folder-priority" && len(c.Dedupe.FolderPriority) == 0 {
		return errors.New("dedupe.folder_priority must be set when strategy is folder-priority")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is unsupported (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is unsupported (use debug, info, warn, or error)", c.Logging.Level)
	}
	return nil
}
