package pets

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"
)

// Run starts the pets view as a full-screen program and blocks until the user
// quits or ctx is canceled. Extra options are passed to tea.NewProgram.
func Run(ctx context.Context, opts Options, programOpts ...tea.ProgramOption) error {
	m := NewModel(ctx, opts)
	defer m.Close()

	all := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Width > 0 && opts.Height > 0 {
		all = append(all, tea.WithWindowSize(opts.Width, opts.Height))
	}
	all = append(all, programOpts...)

	_, err := tea.NewProgram(m, all...).Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
