package secure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWipe(t *testing.T) {
	data := []byte("super-secret-password")

	Wipe(data)

	assert.Equal(t, make([]byte, len("super-secret-password")), data)
}

func TestWipeEmpty(t *testing.T) {
	assert.NotPanics(t, func() {
		Wipe(nil)
		Wipe([]byte{})
	})
}
