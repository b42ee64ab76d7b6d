// Package clipboard copies assistant replies to the system clipboard.
package clipboard

import cb "github.com/atotto/clipboard"

func Copy(text string) error {
	return cb.WriteAll(text)
}

func Read() (string, error) {
	return cb.ReadAll()
}

// Available reports whether a clipboard tool is usable on this system.
// Linux needs xclip, xsel or wl-clipboard installed.
func Available() bool {
	return !cb.Unsupported
}
