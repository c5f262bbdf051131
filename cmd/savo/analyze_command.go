package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"savo/internal/commentary"
	"savo/internal/report"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var skipCommentary bool

	cmd := &cobra.Command{
		Use:   "analyze <audio-file>",
		Short: "Write the analysis report, feature CSV, and plots without rendering video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			source, err := resolveSource(args[0])
			if err != nil {
				return err
			}

			timeline, summary, err := analyzeSource(runCtx, ctx, source)
			if err != nil {
				return err
			}

			script := commentary.Script{}
			if !skipCommentary {
				script, err = generateScript(runCtx, ctx, source, timeline, summary)
				if err != nil {
					return err
				}
			}

			base := sourceBase(source)
			files, err := report.WriteAll(cfg.Paths.OutputDir, base, report.Inputs{
				Piece:       filepath.Base(source),
				Timeline:    timeline,
				Summary:     summary,
				Narrative:   script.Narrative,
				GeneratedAt: time.Now(),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Report:   %s\n", files.Report)
			fmt.Fprintf(out, "Features: %s\n", files.CSV)
			fmt.Fprintf(out, "Plots:    %s\n", files.Plots)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipCommentary, "no-commentary", false, "Skip the generated narrative")
	return cmd
}
