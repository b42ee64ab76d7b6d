package hotkey

// Hotkey is a global key binding that reports raw press and release
// edges. Toggle turns those edges into mic flips.
type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
	// Combo names the bound key combination for help text and
	// diagnostics, in the TUI's lowercase key style.
	Combo() string
}
