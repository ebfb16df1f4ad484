package lifecycle

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shortChannel struct{ *fakeChannel }

func (c shortChannel) Write(b []byte) (int, error) { return len(b) - 1, nil }

func TestTriggerHandshake(t *testing.T) {
	ch := newFakeChannel(&journal{}, procon.PSMInterrupt, console)
	require.NoError(t, TriggerHandshake(ch))

	w := ch.written()
	require.Len(t, w, 10)
	for i, b := range w {
		assert.True(t, isEmptyReport(b), "report %d", i)
	}
}

func TestTriggerHandshakeStopsOnFailure(t *testing.T) {
	ch := newFakeChannel(&journal{}, procon.PSMInterrupt, console)
	ch.failAt = 0

	err := TriggerHandshake(ch)

	var we *procon.WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, procon.PSMInterrupt, we.PSM)
	assert.Zero(t, we.N)
	assert.Empty(t, ch.written())
}

func TestTriggerHandshakeShortWrite(t *testing.T) {
	ch := shortChannel{newFakeChannel(&journal{}, procon.PSMInterrupt, console)}

	err := TriggerHandshake(ch)

	var we *procon.WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, 363, we.N)
	assert.Equal(t, io.ErrShortWrite, errors.Cause(we.Err))
}
