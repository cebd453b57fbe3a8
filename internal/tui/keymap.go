package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit        key.Binding
	reload      key.Binding
	toggleHelp  key.Binding
	columnLeft  key.Binding
	columnRight key.Binding
	cardUp      key.Binding
	cardDown    key.Binding
	moveLeft    key.Binding
	moveRight   key.Binding
	details     key.Binding
	filter      key.Binding
	copyAddress key.Binding
	toggleFlag  key.Binding
	dismiss     key.Binding
	cancel      key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		columnLeft:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		columnRight: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		cardUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "card up")),
		cardDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "card down")),
		moveLeft:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move card left")),
		moveRight:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move card right")),
		details:     key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "details")),
		filter:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		copyAddress: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy address")),
		toggleFlag:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "flag")),
		dismiss:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss notice")),
		cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.moveLeft, k.moveRight, k.details, k.filter, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.columnLeft, k.columnRight, k.cardUp, k.cardDown},
		{k.moveLeft, k.moveRight, k.details, k.filter, k.copyAddress, k.toggleFlag},
		{k.cancel, k.dismiss, k.reload, k.toggleHelp, k.quit},
	}
}
