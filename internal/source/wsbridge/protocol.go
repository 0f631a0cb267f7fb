package wsbridge

// Message types sent by clients.
const (
	TypeKeyDown      = "keydown"
	TypeKeyUp        = "keyup"
	TypeBlur         = "blur"
	TypeEnableScope  = "enable_scope"
	TypeDisableScope = "disable_scope"
	TypeToggleScope  = "toggle_scope"
)

// Message types sent by the server.
const (
	TypeSuppress = "suppress"
	TypeFired    = "fired"
	TypeScopes   = "scopes"
	TypeError    = "error"
)

// ClientMessage is a JSON message from a browser page.
//
//	{"type":"keydown","key":"Control","id":"e17"}
//	{"type":"keyup","key":"Control"}
//	{"type":"blur"}
//	{"type":"toggle_scope","scope":"editor"}
//
// ID is an opaque event identifier echoed back in suppress messages.
type ClientMessage struct {
	Type   string `json:"type"`
	Key    string `json:"key,omitempty"`
	Repeat bool   `json:"repeat,omitempty"`
	ID     string `json:"id,omitempty"`
	Scope  string `json:"scope,omitempty"`
}

// SuppressMessage tells the page which events matched a hotkey and should
// have their default action prevented.
type SuppressMessage struct {
	Type string   `json:"type"`
	Keys []string `json:"keys"`
	IDs  []string `json:"ids,omitempty"`
}

// FiredBinding describes a binding that fired.
type FiredBinding struct {
	ID          string   `json:"id"`
	Hotkeys     string   `json:"hotkeys,omitempty"`
	Scopes      []string `json:"scopes,omitempty"`
	Description string   `json:"description,omitempty"`
}

// FiredMessage lists the bindings fired by one event.
type FiredMessage struct {
	Type     string         `json:"type"`
	Bindings []FiredBinding `json:"bindings"`
}

// ScopesMessage reports the active scopes after a scope command.
type ScopesMessage struct {
	Type   string   `json:"type"`
	Active []string `json:"active"`
}

// ErrorMessage reports a rejected client message.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
