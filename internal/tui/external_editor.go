package tui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

type externalEditorDoneMsg struct {
	err error
}

// execProcess is swapped in tests so no editor is launched.
var execProcess = tea.ExecProcess

func externalEditorName() string {
	if v := strings.TrimSpace(os.Getenv("VISUAL")); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("EDITOR")); v != "" {
		return v
	}
	return "vi"
}

// openExternalEditor writes the config textarea to a temp .json file and
// suspends the program while $VISUAL/$EDITOR runs on it.
func (m *appModel) openExternalEditor() (tea.Cmd, error) {
	args := splitEditorCommand(externalEditorName())
	if len(args) == 0 {
		args = []string{"vi"}
	}

	f, err := os.CreateTemp("", "botsdash-config-*.json")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	if _, err := f.WriteString(m.configEditor.Value()); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	_ = f.Close()

	m.externalEditorPath = path
	m.externalEditorBefore = m.configEditor.Value()

	cmd := exec.Command(args[0], append(args[1:], path)...)
	return execProcess(cmd, func(err error) tea.Msg {
		return externalEditorDoneMsg{err: err}
	}), nil
}

func (m *appModel) applyExternalEditorResult(msg externalEditorDoneMsg) {
	path := m.externalEditorPath
	before := m.externalEditorBefore
	m.externalEditorPath = ""
	m.externalEditorBefore = ""
	if strings.TrimSpace(path) == "" {
		return
	}
	defer func() { _ = os.Remove(path) }()

	if msg.err != nil {
		m.showMinibuffer("Editor failed: " + msg.err.Error())
		return
	}
	b, err := os.ReadFile(path)
	if err != nil {
		m.showMinibuffer("Editor read failed: " + err.Error())
		return
	}
	after := string(b)
	m.configEditor.SetValue(after)
	if strings.TrimSpace(after) == strings.TrimSpace(before) {
		m.showMinibuffer(fmt.Sprintf("No changes from %s", externalEditorName()))
		return
	}
	m.showMinibuffer(fmt.Sprintf("Updated from %s (ctrl+s to save)", externalEditorName()))
}

// splitEditorCommand splits an editor setting such as `code --wait` into
// argv. Single and double quotes group words; a backslash escapes the next
// rune outside single quotes.
func splitEditorCommand(s string) []string {
	var out []string
	var cur strings.Builder
	inWord, inSingle, inDouble, escaped := false, false, false, false

	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && !inSingle:
			escaped, inWord = true, true
		case r == '\'' && !inDouble:
			inSingle, inWord = !inSingle, true
		case r == '"' && !inSingle:
			inDouble, inWord = !inDouble, true
		case unicode.IsSpace(r) && !inSingle && !inDouble:
			if inWord {
				out = append(out, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		out = append(out, cur.String())
	}
	return out
}
