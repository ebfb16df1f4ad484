package sliceops

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwapBuf(t *testing.T) {
	in := []byte{0x56, 0x34, 0x12, 0xe9, 0xb6, 0x98}
	assert.Equal(t, []byte{0x98, 0xb6, 0xe9, 0x12, 0x34, 0x56}, SwapBuf(in))
	assert.Equal(t, []byte{0x56, 0x34, 0x12, 0xe9, 0xb6, 0x98}, in)

	assert.Equal(t, []byte{3, 2, 1}, SwapBuf([]byte{1, 2, 3}))
	assert.Equal(t, []byte{}, SwapBuf([]byte{}))
}
