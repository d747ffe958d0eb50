package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cleancut/internal/logging"
	"cleancut/internal/runlog"
	"cleancut/internal/scene"
	"cleancut/internal/stats"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var scan scanFlags
	var assembly sceneFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "scan <frames-dir>",
		Short: "Detect scene boundaries in an extracted frame sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			fps, source, err := resolveFrameRate(cmd.Context(), cfg, scan, args[0])
			if err != nil {
				return err
			}
			seq, inputPath, err := openSequence(args[0], fps)
			if err != nil {
				return err
			}

			cache := stats.NewCache()
			statsPath := strings.TrimSpace(scan.stats)
			if statsPath != "" {
				loaded, err := loadStatsCache(cache, statsPath, logger)
				if err != nil {
					return err
				}
				if loaded {
					logger.Info("loaded metric cache",
						logging.String(logging.FieldSource, statsPath),
						logging.Int("frames", cache.FrameCount()))
				}
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

			startedAt := time.Now().UTC()
			frames, err := manager.Scan(cmd.Context(), seq, opts)
			if err != nil {
				return err
			}
			finishedAt := time.Now().UTC()

			scenes, err := manager.Scenes(assembly.options(cmd, cfg))
			if err != nil {
				return err
			}

			if statsPath != "" {
				if err := saveStatsCache(cache, statsPath, fps); err != nil {
					return err
				}
			}

			if cfg.RunLog.Enabled {
				if err := recordRun(cmd, cfg.RunLog.Path, runlog.Run{
					Source:     source,
					Detector:   detectorName,
					FrameRate:  fps,
					StartFrame: firstFrame(scenes),
					EndFrame:   lastFrame(scenes),
					SceneCount: len(scenes),
					StatsPath:  statsPath,
					StartedAt:  startedAt,
					FinishedAt: finishedAt,
				}); err != nil {
					logger.Warn("run not recorded", logging.Error(err))
				}
			}

			if jsonOutput {
				return writeJSON(cmd, struct {
					Source   string      `json:"source"`
					Detector string      `json:"detector"`
					FPS      float64     `json:"fps"`
					Frames   int         `json:"frames"`
					Scenes   []sceneJSON `json:"scenes"`
				}{source, detectorName, fps, frames, buildSceneJSON(scenes)})
			}

			out := cmd.OutOrStdout()
			renderSummaryLine(out, fmt.Sprintf("%s detector: %d scenes in %d frames (%s)",
				detectorTitle(detectorName), len(scenes), frames, inputPath))
			if len(scenes) == 0 {
				fmt.Fprintln(out, "No scenes detected")
				return nil
			}
			fmt.Fprintln(out, renderTable(sceneTableHeaders, buildSceneRows(scenes), sceneTableAligns))
			return nil
		},
	}

	scan.register(cmd)
	assembly.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func recordRun(cmd *cobra.Command, dbPath string, run runlog.Run) error {
	store, err := runlog.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	_, err = store.Record(cmd.Context(), run)
	return err
}

func firstFrame(scenes scene.List) int {
	if len(scenes) == 0 {
		return 0
	}
	return scenes[0].Start.Frame()
}

func lastFrame(scenes scene.List) int {
	if len(scenes) == 0 {
		return 0
	}
	return scenes[len(scenes)-1].End.Frame()
}
