package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	Tab       key.Binding
	ShiftTab  key.Binding
	Click     key.Binding
	Commit    key.Binding
	Mode      key.Binding
	PlayPause key.Binding
	SkipBack  key.Binding
	SkipFwd   key.Binding
	Leave     key.Binding
	Clear     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("h/←", "prev token")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("l/→", "next token")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/↑", "line up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/↓", "line down")),
	Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
	ShiftTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev pane")),
	Click:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	Commit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "create alignment")),
	Mode:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "select/jump")),
	PlayPause: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play/pause")),
	SkipBack:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "back")),
	SkipFwd:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "forward")),
	Leave:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear hover")),
	Clear:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear selection")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Click, k.Commit, k.Mode, k.PlayPause, k.Tab, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down, k.Tab, k.ShiftTab},
		{k.Click, k.Commit, k.Clear, k.Leave, k.Mode},
		{k.PlayPause, k.SkipBack, k.SkipFwd, k.Help, k.Quit},
	}
}
