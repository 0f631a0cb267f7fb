package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"k", "k"},
		{"K", "k"},
		{"ArrowUp", "arrowup"},
		{" Escape ", "escape"},
		{"Control", "control"},
		{"Ctrl", "control"},
		{"Meta", "meta"},
		{"Cmd", "meta"},
		{"Command", "meta"},
		{" ", "space"},
		{"Spacebar", "space"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeKey(tt.raw), "NormalizeKey(%q)", tt.raw)
	}
}

func TestRawEvent(t *testing.T) {
	ev := NewRawEvent("Shift")
	assert.Equal(t, "shift", ev.Normalized())
	assert.False(t, ev.Timestamp.IsZero())
	assert.False(t, ev.Repeat)

	native := struct{ code int }{16}
	ev2 := ev.WithNative(native).WithRepeat(true)
	assert.Equal(t, native, ev2.Native)
	assert.True(t, ev2.Repeat)
	assert.Nil(t, ev.Native, "With* must not modify the receiver")
}
