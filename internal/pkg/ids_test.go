package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateNewSessionID(t *testing.T) {
	first := GenerateNewSessionID()
	second := GenerateNewSessionID()

	assert.NotEqual(t, first, second)
	assert.True(t, IsValidSessionID(first))
	assert.False(t, IsValidSessionID("not-a-session"))
	assert.False(t, IsValidSessionID(""))
}
