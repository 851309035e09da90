package pets

import (
	"context"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
)

// RenderSnapshot runs Init and the initial refresh to completion without a
// terminal and returns the resulting frame. The location, if any, is ignored.
// The error is the one the status line reports, if any.
func RenderSnapshot(ctx context.Context, opts Options, width, height int) (string, error) {
	opts.Location = nil
	opts.Width = width
	opts.Height = height
	m := NewModel(ctx, opts)
	defer m.Close()

	drive(m, m.Init())
	return m.Render(), m.Err()
}

// drive executes cmd and every command it leads to on the calling goroutine.
// Spinner ticks are discarded so the loop terminates.
func drive(m *Model, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg:
		default:
			_, follow := m.Update(msg)
			queue = append(queue, follow)
		}
	}
}
