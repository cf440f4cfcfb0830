package colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmpty(t *testing.T) {
	got, err := Normalize("")
	assert.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestNormalizeCSSName(t *testing.T) {
	got, err := Normalize("Red")
	assert.NoError(t, err)
	assert.Equal(t, "#ff0000", got)
}

func TestNormalizeShortHex(t *testing.T) {
	got, err := Normalize("#0f0")
	assert.NoError(t, err)
	assert.Equal(t, "#00ff00", got)
}

func TestNormalizeLongHexNoHash(t *testing.T) {
	got, err := Normalize("0000FF")
	assert.NoError(t, err)
	assert.Equal(t, "#0000ff", got)
}

func TestNormalizeInvalid(t *testing.T) {
	_, err := Normalize("not-a-colour")
	assert.Error(t, err)
}
