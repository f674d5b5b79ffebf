package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScanner()
	c.normalizeReconcile()
	if err := c.normalizeDedupe(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TrashDir) == "" {
		c.Paths.TrashDir = defaultTrashDir
	}
	if c.Paths.TrashDir, err = expandPath(c.Paths.TrashDir); err != nil {
		return fmt.Errorf("paths.trash_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScanner() {
	if len(c.Scanner.Extensions) == 0 {
		c.Scanner.Extensions = append([]string(nil), DefaultExtensions...)
	}
	normalized := make([]string, 0, len(c.Scanner.Extensions))
	for _, ext := range c.Scanner.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	c.Scanner.Extensions = normalized

	if c.Scanner.HashPrefixBytes <= 0 {
		c.Scanner.HashPrefixBytes = defaultHashPrefixBytes
	}
	if c.Scanner.MinFileSize < 0 {
		c.Scanner.MinFileSize = 0
	}
}

func (c *Config) normalizeReconcile() {
	if c.Reconcile.BatchSize <= 0 {
		c.Reconcile.BatchSize = defaultBatchSize
	}
}

func (c *Config) normalizeDedupe() error {
	c.Dedupe.Strategy = strings.ToLower(strings.TrimSpace(c.Dedupe.Strategy))
	if c.Dedupe.Strategy == "" {
		c.Dedupe.Strategy = defaultDedupeStrategy
	}
	if c.Dedupe.Marker == "" {
		c.Dedupe.Marker = defaultDedupeMarker
	}

	expanded := make([]string, 0, len(c.Dedupe.FolderPriority))
	for _, prefix := range c.Dedupe.FolderPriority {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			continue
		}
		resolved, err := expandPath(prefix)
		if err != nil {
			return fmt.Errorf("dedupe.folder_priority: %w", err)
		}
		expanded = append(expanded, resolved)
	}
	c.Dedupe.FolderPriority = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
