// Package command builds and sends the outbound requests the dashboard makes
// to the bots server. Every command is fire-and-forget: the outcome arrives
// later as an inbound event.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"
)

const (
	NamespaceAPI    = "api"
	NamespaceServer = "server"
)

// Event names sent on the api namespace.
const (
	EventAppStart   = "app_start"
	EventAppReload  = "app_reload"
	EventAppPause   = "app_pause"
	EventAppSchema  = "app_schema"
	EventAppEdit    = "app_edit"
	EventAppConfig  = "app_config"
	EventAppsStart  = "apps_start"
	EventAppsPause  = "apps_pause"
	EventAppsReload = "apps_reload"
	EventAppsConfig = "apps_config"
	EventShutdown   = "shutdown"
)

// Event names the server answers refresh requests with. Failures still come
// back under the request's own name.
const (
	EventAllAppConfigs   = "all_app_configs"
	EventSingleAppConfig = "single_app_config"
)

// Replies lists the inbound event names that answer a request sent as event.
func Replies(event string) []string {
	switch event {
	case EventAppsConfig:
		return []string{EventAllAppConfigs, EventAppsConfig}
	case EventAppConfig:
		return []string{EventSingleAppConfig, EventAppConfig}
	default:
		return []string{event}
	}
}

// Emitter sends one named event with a JSON-encodable payload.
type Emitter interface {
	Emit(namespace, event string, payload any) error
}

// InvalidJSONError is returned when config text does not parse. Nothing is
// sent when it occurs.
type InvalidJSONError struct {
	Err error
}

func (e *InvalidJSONError) Error() string {
	return "Invalid JSON: " + e.Err.Error()
}

func (e *InvalidJSONError) Unwrap() error { return e.Err }

var ErrNoEmitter = errors.New("no connection")

// AppPayload is the body of every single-app command.
type AppPayload struct {
	AppID string `json:"appId"`
}

// EditPayload is the body of app_edit.
type EditPayload struct {
	AppID  string         `json:"appId"`
	Config map[string]any `json:"config"`
}

type Commands struct {
	emitter Emitter
}

func New(emitter Emitter) *Commands {
	return &Commands{emitter: emitter}
}

func (c *Commands) Start(appID string) error  { return c.app(EventAppStart, appID) }
func (c *Commands) Reload(appID string) error { return c.app(EventAppReload, appID) }
func (c *Commands) Pause(appID string) error  { return c.app(EventAppPause, appID) }
func (c *Commands) Schema(appID string) error { return c.app(EventAppSchema, appID) }

// Refresh asks the server to resend one app as a single-record update.
func (c *Commands) Refresh(appID string) error { return c.app(EventAppConfig, appID) }

func (c *Commands) StartAll() error  { return c.emit(NamespaceAPI, EventAppsStart, struct{}{}) }
func (c *Commands) PauseAll() error  { return c.emit(NamespaceAPI, EventAppsPause, struct{}{}) }
func (c *Commands) ReloadAll() error { return c.emit(NamespaceAPI, EventAppsReload, struct{}{}) }

// RefreshAll asks the server for a full-collection update.
func (c *Commands) RefreshAll() error { return c.emit(NamespaceAPI, EventAppsConfig, struct{}{}) }

// Shutdown stops the bots server.
func (c *Commands) Shutdown() error { return c.emit(NamespaceServer, EventShutdown, struct{}{}) }

// Edit validates text locally and, only if it parses to a JSON object, sends
// app_edit with the parsed config.
func (c *Commands) Edit(appID, text string) error {
	cfg, err := ParseConfig(text)
	if err != nil {
		return err
	}
	return c.emit(NamespaceAPI, EventAppEdit, EditPayload{AppID: appID, Config: cfg})
}

// Run sends the command bound to a row control action.
func (c *Commands) Run(action, appID string) error {
	switch action {
	case EventAppStart:
		return c.Start(appID)
	case EventAppReload:
		return c.Reload(appID)
	case EventAppPause:
		return c.Pause(appID)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func (c *Commands) app(event, appID string) error {
	return c.emit(NamespaceAPI, event, AppPayload{AppID: appID})
}

func (c *Commands) emit(ns, event string, payload any) error {
	if c == nil || c.emitter == nil {
		return ErrNoEmitter
	}
	if err := c.emitter.Emit(ns, event, payload); err != nil {
		return fmt.Errorf("emit %s/%s: %w", ns, event, err)
	}
	return nil
}

// ParseConfig parses editor text into a config object. The text must be a
// strict JSON object; comments and trailing commas are rejected.
func ParseConfig(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &InvalidJSONError{Err: errors.New("empty document")}
	}
	var cfg map[string]any
	if err := json.Unmarshal([]byte(text), &cfg); err != nil {
		return nil, &InvalidJSONError{Err: err}
	}
	if cfg == nil {
		return nil, &InvalidJSONError{Err: errors.New("config must be an object")}
	}
	return cfg, nil
}

// TidyConfig strips comments and trailing commas from text and, when the
// result is a valid config, reindents it. The stripped text is returned even
// when it still does not parse, so the caller can show it.
func TidyConfig(text string) (string, error) {
	stripped := string(jsonc.ToJSON([]byte(text)))
	cfg, err := ParseConfig(stripped)
	if err != nil {
		return stripped, err
	}
	return FormatConfig(cfg), nil
}

// FormatConfig renders a config for editing, indented by four spaces.
func FormatConfig(cfg map[string]any) string {
	if cfg == nil {
		cfg = map[string]any{}
	}
	b, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
