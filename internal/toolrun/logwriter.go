package toolrun

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/socforge/socforge/internal/eventbus"
)

const maxBufferedOutput = 16 * 1024

// lineWriter publishes tool stdout/stderr lines on the event bus.
type lineWriter struct {
	ctx  context.Context
	bus  *eventbus.Bus
	tool string

	mu  sync.Mutex
	buf bytes.Buffer
}

func newLineWriter(ctx context.Context, bus *eventbus.Bus, tool string) *lineWriter {
	return &lineWriter{ctx: ctx, bus: bus, tool: tool}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	if w.bus == nil {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.buf.Write(p); err != nil {
		return 0, err
	}

	for {
		data := w.buf.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		line := string(bytes.TrimRight(data[:idx], "\r"))
		w.publish(line)
		w.buf.Next(idx + 1)
	}

	// Flush if the buffer grows without a newline to bound memory usage.
	if w.buf.Len() > maxBufferedOutput {
		line := strings.TrimSpace(w.buf.String())
		if line != "" {
			w.publish(line)
		}
		w.buf.Reset()
	}

	return len(p), nil
}

// Close flushes any unterminated final line.
func (w *lineWriter) Close() {
	if w.bus == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.publish(strings.TrimSpace(w.buf.String()))
		w.buf.Reset()
	}
}

func (w *lineWriter) publish(line string) {
	w.bus.Publish(w.ctx, eventbus.TopicToolOutput, eventbus.SourceToolRunner, eventbus.ToolOutputEvent{
		Tool: w.tool,
		Line: line,
	})
}
