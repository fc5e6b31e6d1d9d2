package config

import "strings"

func (c *Config) normalize() error {
	var err error

	c.Volume.Backend = strings.ToLower(strings.TrimSpace(c.Volume.Backend))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Server.Listen = strings.TrimSpace(c.Server.Listen)

	if c.Volume.PluginDir, err = expandPath(strings.TrimSpace(c.Volume.PluginDir)); err != nil {
		return err
	}
	if c.Store.DataDir, err = expandPath(strings.TrimSpace(c.Store.DataDir)); err != nil {
		return err
	}
	if c.Detector.Script, err = expandPath(strings.TrimSpace(c.Detector.Script)); err != nil {
		return err
	}

	if c.Display.Title == "" {
		c.Display.Title = defaultWindowTitle
	}
	if c.Store.HistorySize <= 0 {
		c.Store.HistorySize = defaultHistoryListLength
	}
	return nil
}
