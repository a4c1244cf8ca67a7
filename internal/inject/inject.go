// Package inject puts transcribed text into the active application via
// the system clipboard and a simulated paste shortcut.
package inject

import (
	"fmt"
	"runtime"

	"github.com/go-vgo/robotgo"
)

// Injector writes the clipboard and sends the platform paste shortcut.
// The clipboard is deliberately not restored afterwards: if the paste
// fails, the text staying on the clipboard is the fallback.
type Injector struct{}

// New creates an Injector.
func New() *Injector {
	return &Injector{}
}

// SetText replaces the clipboard contents.
func (inj *Injector) SetText(text string) error {
	if err := robotgo.WriteAll(text); err != nil {
		return fmt.Errorf("inject: write to clipboard: %w", err)
	}
	return nil
}

// SendPasteShortcut sends the platform paste chord (Cmd+V on macOS,
// Ctrl+V elsewhere) to whatever application has focus.
func (inj *Injector) SendPasteShortcut() error {
	if err := robotgo.KeyTap("v", pasteModifier()); err != nil {
		return fmt.Errorf("inject: key tap %s+v: %w", pasteModifier(), err)
	}
	return nil
}

func pasteModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}
