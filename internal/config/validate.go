package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateScene(); err != nil {
		return err
	}
	if err := c.validateFFprobe(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDetection() error {
	switch c.Detection.Detector {
	case "content", "threshold", "adaptive":
	default:
		return fmt.Errorf("detection.detector must be one of content, threshold, adaptive; got %q", c.Detection.Detector)
	}
	if c.Detection.ContentThreshold > 255 {
		return errors.New("detection.content_threshold must be at most 255")
	}
	if c.Detection.FadeThreshold > 255 {
		return errors.New("detection.fade_threshold must be at most 255")
	}
	return nil
}

func (c *Config) validateScene() error {
	if c.Scene.DropShort < 0 {
		return errors.New("scene.drop_short must be >= 0")
	}
	if c.Scene.OverlapBias < -1 || c.Scene.OverlapBias > 1 {
		return errors.New("scene.overlap_bias must be between -1 and 1")
	}
	return nil
}

func (c *Config) validateFFprobe() error {
	if c.FFprobe.Binary == "" {
		return errors.New("ffprobe.binary must be set")
	}
	if c.FFprobe.TimeoutSeconds <= 0 {
		return errors.New("ffprobe.timeout_seconds must be positive")
	}
	return nil
}
