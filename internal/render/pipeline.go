package render

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"time"

	"savo/internal/commentary"
	"savo/internal/compose"
	"savo/internal/encode"
	"savo/internal/features"
	"savo/internal/logging"
	"savo/internal/services"
)

const progressLogInterval = 300

// Compositor produces one frame per index. compose.Compositor is the
// production implementation; tests substitute failure-injecting fakes.
type Compositor interface {
	Frame(index int, timeline *features.Timeline, cue commentary.Cue) (*compose.Frame, error)
	Degraded(index int, timeline *features.Timeline) *compose.Frame
}

// Params collects the pipeline's collaborators. Workers defaults to the CPU
// count; QueueDepth bounds composed-but-not-encoded frames and defaults to
// twice the worker count.
type Params struct {
	Timeline   *features.Timeline
	Scheduler  *commentary.Scheduler
	Compositor Compositor
	Layout     compose.Layout
	Encoder    encode.Encoder
	Logger     *slog.Logger
	Workers    int
	QueueDepth int
}

// Result summarizes a completed render.
type Result struct {
	Frames   int
	Degraded int
	Elapsed  time.Duration
}

// Pipeline drives one render from frame zero through the encoder's Close.
type Pipeline struct {
	timeline   *features.Timeline
	scheduler  *commentary.Scheduler
	compositor Compositor
	layout     compose.Layout
	encoder    encode.Encoder
	logger     *slog.Logger
	workers    int
	queueDepth int
}

// New validates the collaborators and builds a pipeline.
func New(params Params) (*Pipeline, error) {
	if params.Timeline == nil || params.Scheduler == nil || params.Compositor == nil || params.Encoder == nil {
		return nil, services.Wrap(services.ErrConfiguration, "render", "new",
			"timeline, scheduler, compositor, and encoder are required", nil)
	}
	workers := params.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	queueDepth := params.QueueDepth
	if queueDepth <= 0 {
		queueDepth = workers * 2
	}
	logger := params.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		timeline:   params.Timeline,
		scheduler:  params.Scheduler,
		compositor: params.Compositor,
		layout:     params.Layout,
		encoder:    params.Encoder,
		logger:     logger,
		workers:    workers,
		queueDepth: queueDepth,
	}, nil
}

// TotalFrames returns how many output frames cover the duration at the given
// rate: ceil(duration * fps).
func TotalFrames(duration float64, fps int) int {
	return int(math.Ceil(duration * float64(fps)))
}

// Run renders every frame and finalizes the encoder. Cancellation abandons
// in-flight composition and discards the partial output.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	total := TotalFrames(p.timeline.Duration(), p.layout.FrameRate)
	p.logger.Info("render started",
		logging.Int("total_frames", total),
		logging.Int("workers", p.workers),
		logging.Float64("duration_seconds", p.timeline.Duration()),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Tickets cap dispatched-but-not-encoded frames.
	tickets := make(chan struct{}, p.queueDepth)
	jobs := make(chan int)
	composed := make(chan composedFrame, p.queueDepth)

	go func() {
		defer close(jobs)
		for i := 0; i < total; i++ {
			select {
			case tickets <- struct{}{}:
			case <-ctx.Done():
				return
			}
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				frame := p.composeFrame(index)
				select {
				case composed <- frame:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(composed)
	}()

	degraded, err := p.drain(ctx, total, tickets, composed)
	if err != nil {
		cancel()
		drainRemaining(composed)
		p.encoder.Abort()
		return Result{}, err
	}

	if err := p.encoder.Close(); err != nil {
		return Result{}, err
	}

	result := Result{Frames: total, Degraded: degraded, Elapsed: time.Since(start)}
	p.logger.Info("render finished",
		logging.Int("frames", result.Frames),
		logging.Int("degraded_frames", result.Degraded),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

type composedFrame struct {
	frame *compose.Frame
}

// composeFrame builds one frame, applying the fail-soft policy: a
// composition failure is logged and replaced by an overlay-suppressed frame.
func (p *Pipeline) composeFrame(index int) composedFrame {
	t := float64(index) * p.layout.FrameInterval()
	cue := p.scheduler.Cue(t, p.layout.FrameInterval())
	frame, err := p.compositor.Frame(index, p.timeline, cue)
	if err != nil {
		p.logger.Warn("frame composition failed, substituting degraded frame",
			logging.Int("frame", index),
			logging.Error(err),
		)
		frame = p.compositor.Degraded(index, p.timeline)
	}
	return composedFrame{frame: frame}
}

// drain re-serializes worker output into strict index order and feeds the
// encoder. It returns the degraded-frame count.
func (p *Pipeline) drain(ctx context.Context, total int, tickets <-chan struct{}, composed <-chan composedFrame) (int, error) {
	pending := make(map[int]*compose.Frame, p.queueDepth)
	next := 0
	degraded := 0

	for next < total {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case item, ok := <-composed:
			if !ok {
				return 0, services.Wrap(services.ErrEncode, "render", "drain",
					"composition stopped before all frames were produced", nil)
			}
			pending[item.frame.Index] = item.frame
		}
		for {
			frame, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if err := p.encoder.Append(frame); err != nil {
				return 0, err
			}
			if frame.Degraded {
				degraded++
			}
			<-tickets
			next++
			if next%progressLogInterval == 0 {
				p.logger.Debug("render progress",
					logging.Int("frame", next),
					logging.Int("total_frames", total),
				)
			}
		}
	}
	return degraded, nil
}

func drainRemaining(composed <-chan composedFrame) {
	for range composed {
	}
}

// IsCanceled reports whether the error is a cancellation rather than a
// render failure.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
