package encode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"savo/internal/compose"
	"savo/internal/logging"
	"savo/internal/services"
)

// Encoder consumes composited frames in index order and finalizes the muxed
// output on Close.
type Encoder interface {
	Append(frame *compose.Frame) error
	Close() error
	Abort()
}

// Options describes one encode job.
type Options struct {
	Binary     string
	AudioPath  string
	OutputPath string
	Width      int
	Height     int
	FrameRate  int
}

// FFmpeg pipes raw RGBA frames into an ffmpeg process that encodes the video
// stream and muxes the untouched source audio alongside it.
type FFmpeg struct {
	opts   Options
	logger *slog.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer

	next     int
	finished bool
}

// NewFFmpeg launches the encoder process. The returned encoder must be
// finished with Close or Abort, or the child process leaks.
func NewFFmpeg(ctx context.Context, opts Options, logger *slog.Logger) (*FFmpeg, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.FrameRate <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "encode", "start",
			fmt.Sprintf("invalid geometry %dx%d@%d", opts.Width, opts.Height, opts.FrameRate), nil)
	}
	if strings.TrimSpace(opts.OutputPath) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "encode", "start", "output path required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	enc := &FFmpeg{opts: opts, logger: logger}
	enc.cmd = exec.CommandContext(ctx, binary, buildArgs(opts)...)
	enc.cmd.Stderr = &enc.stderr

	stdin, err := enc.cmd.StdinPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrEncode, "encode", "start", "open stdin pipe", err)
	}
	enc.stdin = stdin

	logger.Debug("launching encoder",
		logging.String("command", binary+" "+strings.Join(buildArgs(opts), " ")),
		logging.String("output", opts.OutputPath),
	)
	if err := enc.cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "encode", "start", "launch ffmpeg", err)
	}
	return enc, nil
}

// buildArgs assembles the ffmpeg invocation: raw RGBA frames on stdin as the
// video stream, the original audio file as the second input, copied through
// an AAC encode without resampling or stretching.
func buildArgs(opts Options) []string {
	args := []string{
		"-hide_banner", "-v", "error", "-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", strconv.Itoa(opts.FrameRate),
		"-i", "pipe:0",
	}
	if opts.AudioPath != "" {
		args = append(args, "-i", opts.AudioPath, "-map", "0:v:0", "-map", "1:a:0", "-c:a", "aac")
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		"-shortest",
		opts.OutputPath,
	)
	return args
}

// Append streams one frame. Frames must arrive in strictly increasing index
// order starting at zero.
func (e *FFmpeg) Append(frame *compose.Frame) error {
	if e.finished {
		return services.Wrap(services.ErrEncode, "encode", "append", "encoder already finished", nil)
	}
	if frame.Index != e.next {
		return services.Wrap(services.ErrEncode, "encode", "append",
			fmt.Sprintf("frame %d submitted out of order, expected %d", frame.Index, e.next), nil)
	}
	if _, err := e.stdin.Write(frame.RGBA()); err != nil {
		return services.Wrap(services.ErrEncode, "encode", "append",
			fmt.Sprintf("write frame %d: %s", frame.Index, e.stderrTail()), err)
	}
	e.next++
	return nil
}

// Close finishes the stream and waits for ffmpeg to finalize the container.
// On failure the partial output file is removed.
func (e *FFmpeg) Close() error {
	if e.finished {
		return nil
	}
	e.finished = true
	if err := e.stdin.Close(); err != nil {
		e.removeOutput()
		return services.Wrap(services.ErrEncode, "encode", "close", "close stdin", err)
	}
	if err := e.cmd.Wait(); err != nil {
		e.removeOutput()
		return services.Wrap(services.ErrEncode, "encode", "close", e.stderrTail(), err)
	}
	return nil
}

// Abort kills the encoder and discards the partial output.
func (e *FFmpeg) Abort() {
	if e.finished {
		return
	}
	e.finished = true
	_ = e.stdin.Close()
	if e.cmd.Process != nil {
		_ = e.cmd.Process.Kill()
	}
	_ = e.cmd.Wait()
	e.removeOutput()
}

// Frames returns how many frames have been accepted so far.
func (e *FFmpeg) Frames() int { return e.next }

func (e *FFmpeg) removeOutput() {
	if err := os.Remove(e.opts.OutputPath); err != nil && !os.IsNotExist(err) {
		e.logger.Warn("failed to remove partial output", logging.String("path", e.opts.OutputPath), logging.Error(err))
	}
}

func (e *FFmpeg) stderrTail() string {
	text := strings.TrimSpace(e.stderr.String())
	if text == "" {
		return "ffmpeg failed"
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	return strings.Join(lines, "; ")
}
