package tui

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

func TestApplyExternalEditorResult_UpdatesEditorAndCleansUp(t *testing.T) {
	var m appModel
	m.configEditor = textarea.New()
	m.configEditor.SetValue("{}")

	path := filepath.Join(t.TempDir(), "edited.json")
	if err := os.WriteFile(path, []byte("{\"a\": 1}\n"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	m.externalEditorPath = path
	m.externalEditorBefore = "{}"
	m.applyExternalEditorResult(externalEditorDoneMsg{})

	if got := m.configEditor.Value(); got != "{\"a\": 1}\n" {
		t.Fatalf("expected editor to be updated, got %q", got)
	}
	if m.externalEditorPath != "" {
		t.Fatalf("expected editor path to be cleared")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be removed, stat err=%v", err)
	}
}

func TestApplyExternalEditorResult_ErrorKeepsText(t *testing.T) {
	var m appModel
	m.configEditor = textarea.New()
	m.configEditor.SetValue("{}")

	path := filepath.Join(t.TempDir(), "edited.json")
	if err := os.WriteFile(path, []byte("changed"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	m.externalEditorPath = path
	m.applyExternalEditorResult(externalEditorDoneMsg{err: errors.New("exit status 1")})

	if got := m.configEditor.Value(); got != "{}" {
		t.Fatalf("editor text should be unchanged, got %q", got)
	}
	if m.minibufferText != "Editor failed: exit status 1" {
		t.Fatalf("unexpected minibuffer %q", m.minibufferText)
	}
}

func TestOpenExternalEditor_WritesTempFile(t *testing.T) {
	t.Setenv("VISUAL", "code --wait")

	var gotArgs []string
	orig := execProcess
	execProcess = func(c *exec.Cmd, fn tea.ExecCallback) tea.Cmd {
		gotArgs = c.Args
		return func() tea.Msg { return fn(nil) }
	}
	t.Cleanup(func() { execProcess = orig })

	var m appModel
	m.configEditor = textarea.New()
	m.configEditor.SetValue(`{"k": "v"}`)

	cmd, err := m.openExternalEditor()
	if err != nil || cmd == nil {
		t.Fatalf("open editor: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(m.externalEditorPath) })

	if len(gotArgs) != 3 || gotArgs[0] != "code" || gotArgs[1] != "--wait" || gotArgs[2] != m.externalEditorPath {
		t.Fatalf("unexpected argv %v", gotArgs)
	}
	b, err := os.ReadFile(m.externalEditorPath)
	if err != nil || string(b) != `{"k": "v"}` {
		t.Fatalf("temp file = %q (%v)", b, err)
	}
	if _, ok := cmd().(externalEditorDoneMsg); !ok {
		t.Fatalf("expected done msg")
	}
}

func TestSplitEditorCommand(t *testing.T) {
	cases := map[string][]string{
		"vim":                      {"vim"},
		"code --wait":              {"code", "--wait"},
		`"/Applications/My Ed" -w`: {"/Applications/My Ed", "-w"},
		`emacs -nw 'a b'`:          {"emacs", "-nw", "a b"},
		`nano a\ b`:                {"nano", "a b"},
		"   ":                      nil,
	}
	for in, want := range cases {
		if got := splitEditorCommand(in); !reflect.DeepEqual(got, want) {
			t.Fatalf("splitEditorCommand(%q) = %#v, want %#v", in, got, want)
		}
	}
}
