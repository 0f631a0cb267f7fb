package keymap

// Builtin returns a copy of a built-in keymap by name.
func Builtin(name string) (*Keymap, bool) {
	switch name {
	case "demo":
		return DemoKeymap(), true
	default:
		return nil, false
	}
}

// BuiltinNames lists the built-in keymaps.
func BuiltinNames() []string {
	return []string{"demo"}
}

// DemoKeymap returns a small keymap exercising global bindings, scoped
// bindings, alternatives and the scope actions. It starts with scope_a
// active.
func DemoKeymap() *Keymap {
	return &Keymap{
		Name:        "demo",
		Description: "Scoped hotkey demo",
		Source:      "builtin:demo",
		Scopes:      []string{"scope_a"},
		Mappings: []Mapping{
			{Keys: "t", Action: "log", Args: []string{"toggle theme"}, Description: "Toggle theme"},
			{Keys: "arrowup", Scopes: []string{"scope_a"}, Action: "log", Args: []string{"counter up"}, Description: "Increment counter"},
			{Keys: "arrowdown", Scopes: []string{"scope_a"}, Action: "log", Args: []string{"counter down"}, Description: "Decrement counter"},
			{Keys: "escape", Action: "log", Args: []string{"counter reset"}, Description: "Reset counter"},
			{Keys: "control+g", Action: "log", Args: []string{"https://github.com"}, Description: "Show repository link"},
			{Keys: "r", Action: "log", Args: []string{"https://docs.rs"}, Description: "Show docs link"},
			{Keys: "1,f1", Action: "scope.toggle", Args: []string{"scope_a"}, Description: "Toggle scope_a"},
			{Keys: "2", Action: "scope.enable", Args: []string{"scope_a"}, Description: "Enable scope_a"},
			{Keys: "3", Action: "scope.disable", Args: []string{"scope_a"}, Description: "Disable scope_a"},
			{Keys: "ctrl+c,ctrl+q", Action: "quit", Description: "Quit"},
		},
	}
}
