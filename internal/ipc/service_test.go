package ipc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadOnlyPropIsNotWritable(t *testing.T) {
	p := readOnly("value")
	assert.Equal(t, "value", p.Value)
	assert.False(t, p.Writable)
}

func TestOptionalU32(t *testing.T) {
	assert.Equal(t, uint32(0), optionalU32(nil))

	v := uint32(42)
	assert.Equal(t, uint32(42), optionalU32(&v))
}
