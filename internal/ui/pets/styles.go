package pets

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme is the palette of the pets view.
type Theme struct {
	TitleFG       color.Color
	TitleBG       color.Color
	StageFG       color.Color
	HeaderFG      color.Color
	SelectedFG    color.Color
	SelectedBG    color.Color
	KeyColor      color.Color
	StatusColor   color.Color
	StatusError   color.Color
	StatusSuccess color.Color
	FooterFG      color.Color
}

// DefaultTheme is the dark palette.
func DefaultTheme() Theme {
	return Theme{
		TitleFG:       lipgloss.Color("15"),
		TitleBG:       lipgloss.Color("236"),
		StageFG:       lipgloss.Color("214"),
		HeaderFG:      lipgloss.Color("15"),
		SelectedFG:    lipgloss.Color("16"),
		SelectedBG:    lipgloss.Color("240"),
		KeyColor:      lipgloss.Color("14"),
		StatusColor:   lipgloss.Color("240"),
		StatusError:   lipgloss.Color("196"),
		StatusSuccess: lipgloss.Color("46"),
		FooterFG:      lipgloss.Color("245"),
	}
}

type styles struct {
	title   lipgloss.Style
	stage   lipgloss.Style
	key     lipgloss.Style
	status  lipgloss.Style
	errText lipgloss.Style
	okText  lipgloss.Style
	footer  lipgloss.Style
}

func newStyles(th Theme, noColor bool) styles {
	s := styles{
		title:   lipgloss.NewStyle().Bold(true).Padding(0, 1),
		stage:   lipgloss.NewStyle().Padding(0, 1),
		key:     lipgloss.NewStyle().Bold(true),
		status:  lipgloss.NewStyle(),
		errText: lipgloss.NewStyle(),
		okText:  lipgloss.NewStyle(),
		footer:  lipgloss.NewStyle(),
	}
	if noColor {
		return s
	}
	s.title = s.title.Foreground(th.TitleFG).Background(th.TitleBG)
	s.stage = s.stage.Foreground(th.StageFG)
	s.key = s.key.Foreground(th.KeyColor)
	s.status = s.status.Foreground(th.StatusColor)
	s.errText = s.errText.Foreground(th.StatusError)
	s.okText = s.okText.Foreground(th.StatusSuccess)
	s.footer = s.footer.Foreground(th.FooterFG)
	return s
}
