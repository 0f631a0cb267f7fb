//go:build !globalhotkeys

package global

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/keyscope/internal/input/key"
)

func TestGrabUnavailable(t *testing.T) {
	s := New(&recordingSink{})
	err := s.Grab(context.Background(), key.MustParseSet("ctrl+k"))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, s.Grabbed())
	assert.False(t, Available)

	ran := false
	RunMain(func() { ran = true })
	assert.True(t, ran)
}
