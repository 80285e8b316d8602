package tui

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

// copyToClipboard is a variable so tests can capture copies.
var copyToClipboard = systemClipboard

func systemClipboard(s string) error {
	s = strings.ReplaceAll(s, "\r\n", "\n")

	switch runtime.GOOS {
	case "darwin":
		return runClipboardCmd("pbcopy", nil, s)
	case "windows":
		return runClipboardCmd("cmd", []string{"/c", "clip"}, s)
	default:
		// Wayland first, then X11.
		var errs []error
		for _, c := range []struct {
			name string
			args []string
		}{
			{"wl-copy", nil},
			{"xclip", []string{"-selection", "clipboard"}},
			{"xsel", []string{"--clipboard", "--input"}},
		} {
			err := runClipboardCmd(c.name, c.args, s)
			if err == nil {
				return nil
			}
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	}
}

func runClipboardCmd(name string, args []string, stdin string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	if err := cmd.Run(); err != nil {
		return errors.New(name + ": " + err.Error())
	}
	return nil
}
