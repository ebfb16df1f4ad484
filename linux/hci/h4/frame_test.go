package h4

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cmdComplete = []byte{0x04, 0x0e, 0x04, 0x01, 0x1a, 0x0c, 0x00}

func drain(c chan []byte) [][]byte {
	var out [][]byte
	for {
		select {
		case b := <-c:
			out = append(out, b)
		default:
			return out
		}
	}
}

func TestFrameWhole(t *testing.T) {
	c := make(chan []byte, 4)
	newFrame(c).Assemble(cmdComplete)
	assert.Equal(t, [][]byte{cmdComplete}, drain(c))
}

func TestFrameSplit(t *testing.T) {
	c := make(chan []byte, 4)
	f := newFrame(c)
	f.Assemble(cmdComplete[:2])
	assert.Empty(t, drain(c))
	f.Assemble(cmdComplete[2:5])
	assert.Empty(t, drain(c))
	f.Assemble(cmdComplete[5:])
	assert.Equal(t, [][]byte{cmdComplete}, drain(c))
}

func TestFrameBackToBack(t *testing.T) {
	acl := []byte{0x02, 0x0b, 0x20, 0x02, 0x00, 0xaa, 0xbb}
	in := append(append([]byte{0x00, 0x99}, cmdComplete...), acl...)

	c := make(chan []byte, 4)
	newFrame(c).Assemble(in)
	assert.Equal(t, [][]byte{cmdComplete, acl}, drain(c))
}

func TestFrameStaleIsDropped(t *testing.T) {
	c := make(chan []byte, 4)
	f := newFrame(c)
	f.Assemble(cmdComplete[:4])
	f.timeout = time.Now().Add(-time.Second)
	f.Assemble(cmdComplete)
	assert.Equal(t, [][]byte{cmdComplete}, drain(c))
}

func TestSocketTransport(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	got := make(chan []byte, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		b := make([]byte, 64)
		n, _ := c.Read(b)
		got <- b[:n]
		c.Write(cmdComplete[:3])
		c.Write(cmdComplete[3:])
		io.Copy(io.Discard, c)
	}()

	rwc, err := NewSocket(ln.Addr().String(), time.Second)
	require.NoError(t, err)
	defer rwc.Close()

	cmd := []byte{0x01, 0x1a, 0x0c, 0x01, 0x03}
	n, err := rwc.Write(cmd)
	require.NoError(t, err)
	assert.Equal(t, len(cmd), n)
	assert.Equal(t, cmd, <-got)

	b := make([]byte, 64)
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		n, err = rwc.Read(b)
		require.NoError(t, err)
		if n > 0 {
			break
		}
	}
	assert.Equal(t, cmdComplete, b[:n])
}
