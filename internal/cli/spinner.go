package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/geoexpr/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows the current pipeline stage on one terminal line while a run
// is in progress. The stage label follows the run through [stageHooks].
type Spinner struct {
	w       io.Writer
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	start   sync.Once
	stop    sync.Once

	mu    sync.Mutex
	stage string
	width int
}

// newSpinner creates a spinner on w that stops when ctx is cancelled.
func newSpinner(ctx context.Context, w io.Writer, stage string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		parent:  ctx,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		stage:   stage,
	}
}

// Stage returns the label currently shown.
func (s *Spinner) Stage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// SetStage replaces the label from the next frame on.
func (s *Spinner) SetStage(stage string) {
	s.mu.Lock()
	s.stage = stage
	s.mu.Unlock()
}

// Start begins the animation. Calling Start more than once has no effect.
func (s *Spinner) Start() {
	s.start.Do(func() {
		go s.run()
	})
}

func (s *Spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clearLine()
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			line := styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]) + " " + StyleDim.Render(s.stage)
			s.width = max(s.width, len(s.stage)+2)
			fmt.Fprintf(s.w, "\r%s", line)
			s.mu.Unlock()
		}
	}
}

// Stop ends the animation and clears the line. It is safe to call more
// than once, and before Start.
func (s *Spinner) Stop() {
	s.stop.Do(func() {
		close(s.done)
		s.start.Do(func() { close(s.stopped) })
		<-s.stopped
		s.cancel()
		s.clearLine()
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width+2))
		s.width = 0
	}
}

// StopWithError stops the spinner and reports the stage that failed.
func (s *Spinner) StopWithError() {
	stage := s.Stage()
	s.Stop()
	printError("%s failed", strings.TrimSuffix(stage, "..."))
}

// Cancelled reports whether the run the spinner belongs to was cancelled.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

// stageHooks relabels a spinner as a run moves through its stages and
// forwards every event to next.
type stageHooks struct {
	s    *Spinner
	next observability.EncodeHooks
}

func (h stageHooks) OnEncodeStart(ctx context.Context, format string) {
	h.s.SetStage("Encoding " + format + "...")
	h.next.OnEncodeStart(ctx, format)
}

func (h stageHooks) OnEncodeComplete(ctx context.Context, format string, entries int, d time.Duration, err error) {
	if err == nil {
		h.s.SetStage(fmt.Sprintf("Writing %d entries...", entries))
	}
	h.next.OnEncodeComplete(ctx, format, entries, d, err)
}

func (h stageHooks) OnOptimizeComplete(ctx context.Context, before, after int, d time.Duration) {
	h.s.SetStage(fmt.Sprintf("Optimized %d to %d entries...", before, after))
	h.next.OnOptimizeComplete(ctx, before, after, d)
}
