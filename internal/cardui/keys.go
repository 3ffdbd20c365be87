package cardui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Day        key.Binding
	Week       key.Binding
	Month      key.Binding
	PrevPeriod key.Binding
	NextPeriod key.Binding
	Toggle     key.Binding
	HoverPrev  key.Binding
	HoverNext  key.Binding
	ClearHover key.Binding
	SwitchView key.Binding
	Settings   key.Binding
	Reload     key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Day:        key.NewBinding(key.WithKeys("1", "d"), key.WithHelp("1/d", "day")),
		Week:       key.NewBinding(key.WithKeys("2", "w"), key.WithHelp("2/w", "week")),
		Month:      key.NewBinding(key.WithKeys("3", "m"), key.WithHelp("3/m", "month")),
		PrevPeriod: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev period")),
		NextPeriod: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next period")),
		Toggle:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "line/bar")),
		HoverPrev:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "hover prev")),
		HoverNext:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "hover next")),
		ClearHover: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear hover")),
		SwitchView: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "chart/usage")),
		Settings:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "settings")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Day, k.Week, k.Month, k.Toggle, k.SwitchView, k.Settings, k.Reload, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Day, k.Week, k.Month, k.PrevPeriod, k.NextPeriod},
		{k.Toggle, k.HoverPrev, k.HoverNext, k.ClearHover},
		{k.SwitchView, k.Settings, k.Reload, k.Quit},
	}
}
