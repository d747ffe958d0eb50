package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cleancut/internal/config"
	"cleancut/internal/export"
	"cleancut/internal/scene"
	"cleancut/internal/stats"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var scan scanFlags
	var assembly sceneFlags
	var format string
	var output string
	var title string

	cmd := &cobra.Command{
		Use:   "export <frames-dir>",
		Short: "Scan a frame sequence and write the scene list to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			outputPath := strings.TrimSpace(output)
			if outputPath == "" {
				return errors.New("--output is required")
			}
			outFormat := strings.ToLower(strings.TrimSpace(format))
			switch outFormat {
			case "csv", "edl":
			default:
				return fmt.Errorf("unknown format %q (expected csv or edl)", format)
			}
			if outputPath, err = config.ExpandPath(outputPath); err != nil {
				return err
			}

			fps, source, err := resolveFrameRate(cmd.Context(), cfg, scan, args[0])
			if err != nil {
				return err
			}
			seq, _, err := openSequence(args[0], fps)
			if err != nil {
				return err
			}

			cache := stats.NewCache()
			if statsPath := strings.TrimSpace(scan.stats); statsPath != "" {
				if _, err := loadStatsCache(cache, statsPath, ctx.ensureLogger()); err != nil {
					return err
				}
			}

			detector, _, err := buildDetector(cfg, scan.detector, cache)
			if err != nil {
				return err
			}
			manager := scene.NewManager(cache, ctx.ensureLogger())
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
			if _, err := manager.Scan(cmd.Context(), seq, opts); err != nil {
				return err
			}

			scenes, err := manager.Scenes(assembly.options(cmd, cfg))
			if err != nil {
				return err
			}

			file, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			switch outFormat {
			case "csv":
				err = export.WriteCSV(file, scenes)
			case "edl":
				name := strings.TrimSpace(title)
				if name == "" {
					name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
				}
				err = export.WriteEDL(file, scenes, name, fps)
			}
			if err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("close output file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d scenes to %s\n", len(scenes), outputPath)
			return nil
		},
	}

	scan.register(cmd)
	assembly.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Output format: csv or edl")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file")
	cmd.Flags().StringVar(&title, "title", "", "EDL title (defaults to the source name)")
	return cmd
}
