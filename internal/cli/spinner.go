package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stackchart/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows the pipeline stage currently running for one input. It
// stops when its context is canceled.
type Spinner struct {
	w      io.Writer
	input  string
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stage   string
	widest  int
	once    sync.Once
	done    chan struct{}
	stopped chan struct{}
}

// newStageSpinner creates a spinner for input writing to w. Its message
// starts at "Reading" and follows the pipeline hooks once installed.
func newStageSpinner(ctx context.Context, w io.Writer, input string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		input:   input,
		ctx:     sctx,
		cancel:  cancel,
		stage:   "Reading",
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Message returns the current status line without styling.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage + " " + s.input + "..."
}

func (s *Spinner) setStage(stage string) {
	s.mu.Lock()
	s.stage = stage
	s.mu.Unlock()
}

// Start begins the animation.
func (s *Spinner) Start() {
	go func() {
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
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	msg := s.Message()
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(msg)
	width := lipgloss.Width(line)
	s.widest = max(s.widest, width)
	fmt.Fprintf(s.w, "\r%s%s", line, strings.Repeat(" ", s.widest-width))
}

// Stop ends the animation and clears the line. It is safe to call more
// than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		close(s.done)
		<-s.stopped
		s.clearLine()
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.widest > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.widest))
	}
}

// Cancelled reports whether the spinner's context was canceled.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

// Track installs pipeline hooks that move the spinner through the shape,
// layout and render stages, forwarding every event to the hooks registered
// before. The returned function restores them.
func (s *Spinner) Track() (restore func()) {
	prev := observability.Pipeline()
	observability.SetPipelineHooks(&stageHooks{PipelineHooks: prev, s: s})
	return func() { observability.SetPipelineHooks(prev) }
}

// stageHooks maps pipeline events onto spinner messages.
type stageHooks struct {
	observability.PipelineHooks
	s *Spinner
}

func (h *stageHooks) OnShapeStart(ctx context.Context, rows int) {
	h.s.setStage(fmt.Sprintf("Shaping %d rows of", rows))
	h.PipelineHooks.OnShapeStart(ctx, rows)
}

func (h *stageHooks) OnLayoutStart(ctx context.Context, kind string, groups int) {
	h.s.setStage(fmt.Sprintf("Laying out %d %s groups of", groups, kind))
	h.PipelineHooks.OnLayoutStart(ctx, kind, groups)
}

func (h *stageHooks) OnRenderStart(ctx context.Context, formats []string) {
	h.s.setStage(fmt.Sprintf("Rendering %s from", strings.Join(formats, ", ")))
	h.PipelineHooks.OnRenderStart(ctx, formats)
}
