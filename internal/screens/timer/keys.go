package timer

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Toggle   key.Binding
	Complete key.Binding
	Stop     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys("space", "p"),
			key.WithHelp("space", "pause/resume"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c", "enter"),
			key.WithHelp("c", "complete"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop early"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Complete, k.Stop, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// setOpen enables the session controls only while the session is open.
func (k *keyMap) setOpen(open bool) {
	k.Toggle.SetEnabled(open)
	k.Complete.SetEnabled(open)
	k.Stop.SetEnabled(open)
}
