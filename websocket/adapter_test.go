package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConn_SendBufferFull(t *testing.T) {
	c := NewConn("conn-a", nil, nil)

	for i := 0; i < cap(c.send); i++ {
		require.NoError(t, c.Send([]byte("x")))
	}

	assert.ErrorIs(t, c.Send([]byte("x")), ErrSendBufferFull)
}
