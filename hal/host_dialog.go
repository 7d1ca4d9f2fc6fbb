//go:build cgo

package hal

import (
	"errors"
	"fmt"

	"github.com/sqweek/dialog"
)

// nativeDialogs uses the platform's message boxes and file choosers.
type nativeDialogs struct {
	log Logger
}

func newNativeDialogs(log Logger) *nativeDialogs {
	return &nativeDialogs{log: log}
}

func (d *nativeDialogs) SaveFile(title, filterDesc, ext string) (string, error) {
	path, err := dialog.File().
		Filter(filterDesc, ext).
		Title(title).
		Save()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", ErrCancelled
	}
	if err != nil {
		return "", fmt.Errorf("save dialog: %w", err)
	}
	return path, nil
}

func (d *nativeDialogs) Notify(title, msg string, isError bool) {
	d.log.WriteLineString("notice: " + title + ": " + msg)
	b := dialog.Message("%s", msg).Title(title)
	if isError {
		b.Error()
		return
	}
	b.Info()
}
