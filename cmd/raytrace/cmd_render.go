package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hmaddocks/raytracing"
	"github.com/hmaddocks/raytracing/runtime/render"
)

var (
	renderOutput   string
	renderWorkers  int
	renderTileSize int
	renderSeed     int64
	renderTimeout  time.Duration
	renderBaseURL  string
	renderTrace    string
)

var renderCmd = &cobra.Command{
	Use:   "render [scene]",
	Short: "Render a scene to an image",
	Long: `Loads a YAML scene definition, renders it and encodes the result to
the output URL. The format follows the output extension (.ppm or .png);
any location the abstract file system understands works, e.g.
/tmp/out.png, file:///tmp/out.png or s3://bucket/out.png.

Example:
  raytrace render scenes/cover.yaml -o cover.png --workers 8 --seed 42`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "render.ppm", "destination image URL")
	renderCmd.Flags().IntVar(&renderWorkers, "workers", 0, "number of render workers (0 uses the default)")
	renderCmd.Flags().IntVar(&renderTileSize, "tile-size", 0, "tile edge length in pixels (0 uses the default)")
	renderCmd.Flags().Int64Var(&renderSeed, "seed", 0, "base sampling seed; renders with the same seed are identical")
	renderCmd.Flags().DurationVar(&renderTimeout, "timeout", time.Hour, "maximum render duration")
	renderCmd.Flags().StringVar(&renderBaseURL, "base-url", "", "base URL relative scene locations resolve against")
	renderCmd.Flags().StringVar(&renderTrace, "trace", "", "write OpenTelemetry spans to this file")
}

func runRender(cmd *cobra.Command, args []string) error {
	location := args[0]

	options := []raytracing.Option{
		raytracing.WithLogger(logger),
		raytracing.WithSeed(renderSeed),
	}
	if renderWorkers > 0 {
		options = append(options, raytracing.WithWorkers(renderWorkers))
	}
	if renderTileSize > 0 {
		options = append(options, raytracing.WithTileSize(renderTileSize))
	}
	if renderBaseURL != "" {
		options = append(options, raytracing.WithSceneBaseURL(renderBaseURL))
	}
	if renderTrace != "" {
		options = append(options, raytracing.WithTracing("raytrace", version, renderTrace))
	}

	srv, err := raytracing.New(options...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rt := srv.Runtime()
	if err := rt.Start(ctx); err != nil {
		return err
	}
	defer rt.Shutdown(ctx)

	aScene, err := rt.LoadScene(ctx, location)
	if err != nil {
		return err
	}

	job, wait, err := rt.StartRender(ctx, aScene)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	go reportProgress(rt, job.ID, done)

	job, err = wait(ctx, renderTimeout)
	close(done)
	if err != nil {
		return err
	}
	if state := job.GetState(); state != render.JobStateCompleted {
		return fmt.Errorf("render finished in state %s", state)
	}

	if err := rt.Encode(ctx, job.ID, renderOutput); err != nil {
		return err
	}
	logger.Info("render written",
		zap.String("scene", aScene.Name),
		zap.String("output", renderOutput),
		zap.Duration("elapsed", job.Elapsed()))
	return nil
}

// reportProgress logs tile counters every 2 seconds until done closes.
func reportProgress(rt *raytracing.Runtime, jobID string, done <-chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			snapshot, ok := rt.Progress(jobID)
			if !ok {
				continue
			}
			logger.Info("rendering",
				zap.Int("completed", snapshot.CompletedTiles),
				zap.Int("total", snapshot.TotalTiles),
				zap.Int64("samples", snapshot.SamplesTraced))
		}
	}
}
