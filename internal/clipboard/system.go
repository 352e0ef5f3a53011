package clipboard

import (
	"github.com/atotto/clipboard"
)

// SystemBoard implements [Board] over the OS clipboard.
type SystemBoard struct{}

func (SystemBoard) ReadText() (string, error) {
	return clipboard.ReadAll()
}

func (SystemBoard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}
