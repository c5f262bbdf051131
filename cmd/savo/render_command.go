package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"savo/internal/analysis"
	"savo/internal/commentary"
	"savo/internal/compose"
	"savo/internal/encode"
	"savo/internal/features"
	"savo/internal/history"
	"savo/internal/logging"
	"savo/internal/media/ffprobe"
	"savo/internal/media/pcm"
	"savo/internal/render"
	"savo/internal/report"
	"savo/internal/services/gemini"
	"savo/internal/timefmt"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var workers int
	var skipCommentary bool

	cmd := &cobra.Command{
		Use:   "render <audio-file>",
		Short: "Render the full visualization video plus analysis reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			source, err := resolveSource(args[0])
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(cfg.Paths.OutputDir, ".savo.lock"))
			held, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire render lock: %w", err)
			}
			if !held {
				return fmt.Errorf("another render is writing to %s", cfg.Paths.OutputDir)
			}
			defer func() { _ = lock.Unlock() }()

			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.StartRun(runCtx, source)
			if err != nil {
				return err
			}

			outcome, renderErr := executeRender(runCtx, cmd, ctx, renderRequest{
				source:         source,
				workers:        workers,
				skipCommentary: skipCommentary,
			})
			// Record the outcome even when the render was canceled.
			if err := store.FinishRun(context.Background(), run.ID, outcome); err != nil {
				logger.Warn("failed to record run outcome", logging.Error(err))
			}
			return renderErr
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Frame composition workers (default: CPU count)")
	cmd.Flags().BoolVar(&skipCommentary, "no-commentary", false, "Render without generated commentary")
	return cmd
}

type renderRequest struct {
	source         string
	workers        int
	skipCommentary bool
}

func executeRender(runCtx context.Context, cmd *cobra.Command, ctx *commandContext, req renderRequest) (history.Outcome, error) {
	cfg, _ := ctx.ensureConfig()
	logger, _ := ctx.ensureLogger()
	out := cmd.OutOrStdout()

	base := sourceBase(req.source)
	outputPath := filepath.Join(cfg.Paths.OutputDir, base+"_visualization.mp4")
	outcome := history.Outcome{OutputPath: outputPath}

	fail := func(err error) (history.Outcome, error) {
		outcome.Err = err
		return outcome, err
	}

	timeline, summary, err := analyzeSource(runCtx, ctx, req.source)
	if err != nil {
		return fail(err)
	}
	outcome.DurationSeconds = timeline.Duration()

	script := commentary.Script{}
	if req.skipCommentary {
		logger.Info("commentary disabled, rendering without annotations")
	} else {
		script, err = generateScript(runCtx, ctx, req.source, timeline, summary)
		if err != nil {
			return fail(err)
		}
		logger.Info("commentary generated", logging.Int("events", len(script.Events)))
	}

	scheduler, err := commentary.NewScheduler(script.Events, cfg.Video.HoldSeconds)
	if err != nil {
		return fail(err)
	}
	layout, err := compose.NewLayout(cfg.Video)
	if err != nil {
		return fail(err)
	}
	encoder, err := encode.NewFFmpeg(runCtx, encode.Options{
		Binary:     cfg.FFmpegBinary(),
		AudioPath:  req.source,
		OutputPath: outputPath,
		Width:      layout.Width,
		Height:     layout.Height,
		FrameRate:  layout.FrameRate,
	}, logger)
	if err != nil {
		return fail(err)
	}

	workers := req.workers
	if workers <= 0 {
		workers = cfg.Video.Workers
	}
	pipeline, err := render.New(render.Params{
		Timeline:   timeline,
		Scheduler:  scheduler,
		Compositor: compose.New(layout),
		Layout:     layout,
		Encoder:    encoder,
		Logger:     logger,
		Workers:    workers,
	})
	if err != nil {
		encoder.Abort()
		return fail(err)
	}

	result, err := pipeline.Run(runCtx)
	if err != nil {
		if render.IsCanceled(err) {
			return fail(fmt.Errorf("render canceled: %w", err))
		}
		return fail(err)
	}
	outcome.Frames = result.Frames
	outcome.DegradedFrames = result.Degraded

	files, err := report.WriteAll(cfg.Paths.OutputDir, base, report.Inputs{
		Piece:       filepath.Base(req.source),
		Timeline:    timeline,
		Summary:     summary,
		Narrative:   script.Narrative,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		return fail(err)
	}

	fmt.Fprintf(out, "Rendered %s (%s, %d frames", outputPath, timefmt.Clock(timeline.Duration()), result.Frames)
	if result.Degraded > 0 {
		fmt.Fprintf(out, ", %d degraded", result.Degraded)
	}
	fmt.Fprintf(out, ") in %s\n", result.Elapsed.Round(time.Second))
	fmt.Fprintf(out, "Report:   %s\n", files.Report)
	fmt.Fprintf(out, "Features: %s\n", files.CSV)
	fmt.Fprintf(out, "Plots:    %s\n", files.Plots)
	return outcome, nil
}

// analyzeSource probes, decodes, and feature-extracts one audio file.
func analyzeSource(runCtx context.Context, ctx *commandContext, source string) (*features.Timeline, analysis.Summary, error) {
	cfg, _ := ctx.ensureConfig()
	logger, _ := ctx.ensureLogger()

	probe, err := ffprobe.Inspect(runCtx, cfg.FFprobeBinary(), source)
	if err != nil {
		return nil, analysis.Summary{}, err
	}
	if err := probe.Validate(); err != nil {
		return nil, analysis.Summary{}, err
	}
	logger.Info("input probed",
		logging.String("source", source),
		logging.Float64("duration_seconds", probe.DurationSeconds()),
		logging.Int("audio_streams", probe.AudioStreamCount()),
	)

	clip, err := pcm.Decode(runCtx, cfg.FFmpegBinary(), source, cfg.Analysis.SampleRate)
	if err != nil {
		return nil, analysis.Summary{}, err
	}

	timeline, err := analysis.Extract(clip, analysis.FromConfig(cfg.Analysis))
	if err != nil {
		return nil, analysis.Summary{}, err
	}
	logger.Info("features extracted",
		logging.Int("frames", timeline.Len()),
		logging.Float64("duration_seconds", timeline.Duration()),
	)
	return timeline, analysis.Summarize(timeline), nil
}

func generateScript(runCtx context.Context, ctx *commandContext, source string, tl *features.Timeline, summary analysis.Summary) (commentary.Script, error) {
	cfg, _ := ctx.ensureConfig()
	client := gemini.NewClient(cfg.Gemini)
	prompt := gemini.BuildPrompt(filepath.Base(source), tl, summary, cfg.Analysis.CommentaryInterval)
	return client.GenerateScript(runCtx, prompt)
}

func resolveSource(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("audio file path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve source path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("source file: %w", err)
	}
	return abs, nil
}

// sourceBase strips the directory and extension from the source path.
func sourceBase(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
