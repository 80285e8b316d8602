package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Focus      key.Binding
	Start      key.Binding
	Pause      key.Binding
	Reload     key.Binding
	Edit       key.Binding
	Schema     key.Binding
	StartAll   key.Binding
	PauseAll   key.Binding
	ReloadAll  key.Binding
	Refresh    key.Binding
	ServerLogs key.Binding
	Copy       key.Binding
	CopyLink   key.Binding
	Shutdown   key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Focus:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "apps/log")),
		Start:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Pause:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Edit:       key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit config")),
		Schema:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "schema")),
		StartAll:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "start all")),
		PauseAll:   key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "pause all")),
		ReloadAll:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload all")),
		Refresh:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		ServerLogs: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "server logs")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy token")),
		CopyLink:   key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy link")),
		Shutdown:   key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "shutdown server")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Reload, k.Edit, k.Schema, k.Focus, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Focus},
		{k.Start, k.Pause, k.Reload, k.Edit, k.Schema},
		{k.StartAll, k.PauseAll, k.ReloadAll, k.Refresh},
		{k.ServerLogs, k.Copy, k.CopyLink, k.Shutdown, k.Help, k.Quit},
	}
}
