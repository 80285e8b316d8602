package command

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

type sent struct {
	ns      string
	event   string
	payload string
}

type recordingEmitter struct {
	sent []sent
	err  error
}

func (r *recordingEmitter) Emit(ns, event string, payload any) error {
	b, _ := json.Marshal(payload)
	r.sent = append(r.sent, sent{ns: ns, event: event, payload: string(b)})
	return r.err
}

func TestSingleAppCommands(t *testing.T) {
	em := &recordingEmitter{}
	c := New(em)
	_ = c.Start("1")
	_ = c.Reload("2")
	_ = c.Pause("3")
	_ = c.Schema("4")
	_ = c.Refresh("5")

	want := []sent{
		{NamespaceAPI, "app_start", `{"appId":"1"}`},
		{NamespaceAPI, "app_reload", `{"appId":"2"}`},
		{NamespaceAPI, "app_pause", `{"appId":"3"}`},
		{NamespaceAPI, "app_schema", `{"appId":"4"}`},
		{NamespaceAPI, "app_config", `{"appId":"5"}`},
	}
	if len(em.sent) != len(want) {
		t.Fatalf("sent %d, want %d", len(em.sent), len(want))
	}
	for i := range want {
		if em.sent[i] != want[i] {
			t.Fatalf("sent[%d] = %#v, want %#v", i, em.sent[i], want[i])
		}
	}
}

func TestBulkAndServerCommands(t *testing.T) {
	em := &recordingEmitter{}
	c := New(em)
	_ = c.StartAll()
	_ = c.PauseAll()
	_ = c.ReloadAll()
	_ = c.RefreshAll()
	_ = c.Shutdown()

	var got []string
	for _, s := range em.sent {
		got = append(got, s.ns+"/"+s.event)
	}
	if strings.Join(got, ",") != "api/apps_start,api/apps_pause,api/apps_reload,api/apps_config,server/shutdown" {
		t.Fatalf("unexpected emits: %v", got)
	}
}

func TestRun(t *testing.T) {
	em := &recordingEmitter{}
	c := New(em)
	if err := c.Run("app_pause", "7"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if em.sent[0].event != "app_pause" || em.sent[0].payload != `{"appId":"7"}` {
		t.Fatalf("unexpected emit %#v", em.sent[0])
	}
	if err := c.Run("edit_config", "7"); err == nil {
		t.Fatalf("expected error for non-outbound action")
	}
}

func TestEdit_InvalidJSONSendsNothing(t *testing.T) {
	em := &recordingEmitter{}
	c := New(em)
	err := c.Edit("1", "{not json")
	var invalid *InvalidJSONError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidJSONError, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "Invalid JSON: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if len(em.sent) != 0 {
		t.Fatalf("nothing must be sent for invalid config")
	}
}

func TestEdit_SendsParsedConfig(t *testing.T) {
	em := &recordingEmitter{}
	c := New(em)
	text := `{
    "chat_id": 42,
    "greeting": "hi"
}`
	if err := c.Edit("1", text); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if len(em.sent) != 1 || em.sent[0].event != "app_edit" {
		t.Fatalf("expected one app_edit, got %#v", em.sent)
	}
	var p EditPayload
	if err := json.Unmarshal([]byte(em.sent[0].payload), &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.AppID != "1" || p.Config["greeting"] != "hi" || p.Config["chat_id"] != float64(42) {
		t.Fatalf("unexpected payload %#v", p)
	}
}

func TestEdit_RejectsCommentsAndTrailingCommas(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{name: "trailing comma", text: `{"a":1,}`},
		{name: "line comment", text: "{\"a\": 1 // note\n}"},
		{name: "block comment", text: `/* x */ {"a": 1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			em := &recordingEmitter{}
			err := New(em).Edit("1", tc.text)
			var invalid *InvalidJSONError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidJSONError, got %v", err)
			}
			if len(em.sent) != 0 {
				t.Fatalf("nothing must be sent, got %#v", em.sent)
			}
		})
	}
}

func TestTidyConfig(t *testing.T) {
	got, err := TidyConfig("{\n  // note\n  \"a\": 1,\n}")
	if err != nil {
		t.Fatalf("tidy: %v", err)
	}
	if got != "{\n    \"a\": 1\n}" {
		t.Fatalf("unexpected tidy result %q", got)
	}
	if _, err := ParseConfig(got); err != nil {
		t.Fatalf("tidied text must parse strictly: %v", err)
	}

	got, err = TidyConfig(`{"a": /* x */ }`)
	var invalid *InvalidJSONError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidJSONError, got %v", err)
	}
	if strings.Contains(got, "/*") {
		t.Fatalf("comments should be stripped even on error, got %q", got)
	}
}

func TestReplies(t *testing.T) {
	cases := []struct {
		event string
		want  string
	}{
		{EventAppsConfig, "all_app_configs,apps_config"},
		{EventAppConfig, "single_app_config,app_config"},
		{EventAppStart, "app_start"},
		{EventShutdown, "shutdown"},
	}
	for _, tc := range cases {
		if got := strings.Join(Replies(tc.event), ","); got != tc.want {
			t.Fatalf("Replies(%q) = %q, want %q", tc.event, got, tc.want)
		}
	}
}

func TestParseConfig_RejectsNonObjects(t *testing.T) {
	for _, text := range []string{"", "   ", "null", "[1,2]", `"x"`, "42"} {
		if _, err := ParseConfig(text); err == nil {
			t.Fatalf("ParseConfig(%q): expected error", text)
		}
	}
}

func TestFormatConfig_FourSpaceIndent(t *testing.T) {
	got := FormatConfig(map[string]any{"a": 1})
	if got != "{\n    \"a\": 1\n}" {
		t.Fatalf("unexpected format %q", got)
	}
	if FormatConfig(nil) != "{}" {
		t.Fatalf("nil config should render as empty object")
	}
}

func TestEmitErrorsAreWrapped(t *testing.T) {
	boom := errors.New("not connected")
	c := New(&recordingEmitter{err: boom})
	if err := c.Start("1"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped emitter error, got %v", err)
	}
	var nilCmds *Commands
	if err := nilCmds.Start("1"); !errors.Is(err, ErrNoEmitter) {
		t.Fatalf("expected ErrNoEmitter, got %v", err)
	}
}
