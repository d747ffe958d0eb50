package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cleancut/internal/logging"
	"cleancut/internal/scene"
	"cleancut/internal/stats"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var scan scanFlags

	cmd := &cobra.Command{
		Use:   "stats <frames-dir>",
		Short: "Populate or refresh a metric cache without reporting scenes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statsPath := strings.TrimSpace(scan.stats)
			if statsPath == "" {
				return errors.New("--stats is required")
			}
			logger := ctx.ensureLogger()

			fps, _, err := resolveFrameRate(cmd.Context(), cfg, scan, args[0])
			if err != nil {
				return err
			}
			seq, _, err := openSequence(args[0], fps)
			if err != nil {
				return err
			}

			cache := stats.NewCache()
			loaded, err := loadStatsCache(cache, statsPath, logger)
			if err != nil {
				return err
			}

			detector, detectorName, err := buildDetector(cfg, scan.detector, cache)
			if err != nil {
				return err
			}
			manager := scene.NewManager(cache, logger)
			if err := manager.AddDetector(detector); err != nil {
				return err
			}

			opts := scene.ScanOptions{}
			if opts.Start, err = parseBound(scan.start, fps); err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			if opts.End, err = parseBound(scan.end, fps); err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}

			frames, err := manager.Scan(cmd.Context(), seq, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !cache.NeedsSave() && loaded {
				fmt.Fprintf(out, "Cache already covers %d frames; nothing to save\n", cache.FrameCount())
				return nil
			}
			if err := saveStatsCache(cache, statsPath, fps); err != nil {
				return err
			}
			logger.Info("metric cache saved",
				logging.String(logging.FieldDetector, detectorName),
				logging.Int("frames", frames))
			fmt.Fprintf(out, "Saved metrics for %d frames to %s\n", cache.FrameCount(), statsPath)
			return nil
		},
	}

	scan.register(cmd)
	return cmd
}
