package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDetection()
	if err := c.normalizeRunLog(); err != nil {
		return err
	}
	c.normalizeFFprobe()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir()
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StatsDir) == "" {
		c.Paths.StatsDir = defaultStatsDir
	}
	if c.Paths.StatsDir, err = expandPath(c.Paths.StatsDir); err != nil {
		return fmt.Errorf("paths.stats_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDetection() {
	c.Detection.Detector = strings.ToLower(strings.TrimSpace(c.Detection.Detector))
	if c.Detection.Detector == "" {
		c.Detection.Detector = defaultDetector
	}
	if c.Detection.ContentThreshold <= 0 {
		c.Detection.ContentThreshold = defaultContentThreshold
	}
	if c.Detection.FadeThreshold <= 0 {
		c.Detection.FadeThreshold = defaultFadeThreshold
	}
	if c.Detection.AdaptiveThreshold <= 0 {
		c.Detection.AdaptiveThreshold = defaultAdaptiveThreshold
	}
	if c.Detection.MinContentValue < 0 {
		c.Detection.MinContentValue = defaultMinContentValue
	}
	if c.Detection.WindowWidth <= 0 {
		c.Detection.WindowWidth = defaultWindowWidth
	}
	if c.Detection.MinSceneLen < 0 {
		c.Detection.MinSceneLen = defaultMinSceneLen
	}
}

func (c *Config) normalizeRunLog() error {
	var err error
	if strings.TrimSpace(c.RunLog.Path) == "" {
		c.RunLog.Path = defaultRunLogPath
	}
	if c.RunLog.Path, err = expandPath(c.RunLog.Path); err != nil {
		return fmt.Errorf("run_log.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeFFprobe() {
	c.FFprobe.Binary = strings.TrimSpace(c.FFprobe.Binary)
	if c.FFprobe.Binary == "" {
		if value, ok := os.LookupEnv("CLEANCUT_FFPROBE"); ok && strings.TrimSpace(value) != "" {
			c.FFprobe.Binary = strings.TrimSpace(value)
		} else {
			c.FFprobe.Binary = defaultFFprobeBinary
		}
	}
	if c.FFprobe.TimeoutSeconds <= 0 {
		c.FFprobe.TimeoutSeconds = defaultFFprobeTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
