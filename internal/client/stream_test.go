package client

import (
	"context"
	"testing"
	"time"

	"threadwatch/internal/testutil"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ch <-chan StreamMessage) []StreamMessage {
	t.Helper()
	var out []StreamMessage
	timeout := time.After(5 * time.Second)
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, msg)
		case <-timeout:
			t.Fatalf("stream did not finish, got %d messages", len(out))
		}
	}
}

func TestOpenStreamRejectsInvalidID(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := newTestClient(t, backend)

	_, _, err := c.OpenStream(context.Background(), "nope")
	require.ErrorIs(t, err, ErrInvalidIdentifier)
	assert.Empty(t, backend.Requests())
}

func TestOpenStreamDeliversFramesThenCleanClose(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SetStream(testRunID, testutil.StreamScript{
		Frames: []string{
			testutil.StatusFrame("running", "Searching"),
			testutil.CompletedFrame(testRunID),
		},
		CloseCode: websocket.StatusNormalClosure,
	})
	c := newTestClient(t, backend)

	ch, cancel, err := c.OpenStream(context.Background(), testRunID)
	require.NoError(t, err)
	defer cancel()

	msgs := collect(t, ch)
	require.Len(t, msgs, 4)
	assert.Equal(t, StreamOpened, msgs[0].Signal)
	assert.Equal(t, StreamFrame, msgs[1].Signal)
	assert.JSONEq(t, testutil.StatusFrame("running", "Searching"), string(msgs[1].Payload))
	assert.Equal(t, StreamFrame, msgs[2].Signal)
	assert.Equal(t, StreamClosedCleanly, msgs[3].Signal)
	assert.Equal(t, int(websocket.StatusNormalClosure), msgs[3].Code)
}

func TestOpenStreamUnknownRunClosesCleanly(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := newTestClient(t, backend)

	ch, cancel, err := c.OpenStream(context.Background(), testRunID)
	require.NoError(t, err)
	defer cancel()

	msgs := collect(t, ch)
	require.Len(t, msgs, 2)
	assert.Equal(t, StreamOpened, msgs[0].Signal)
	assert.Equal(t, StreamClosedCleanly, msgs[1].Signal)
	assert.Equal(t, 4004, msgs[1].Code)
	assert.Equal(t, "Run not found", msgs[1].Reason)
}

func TestOpenStreamDropIsAbnormal(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SetStream(testRunID, testutil.StreamScript{
		Frames: []string{testutil.StatusFrame("running", "x")},
		Drop:   true,
	})
	c := newTestClient(t, backend)

	ch, cancel, err := c.OpenStream(context.Background(), testRunID)
	require.NoError(t, err)
	defer cancel()

	msgs := collect(t, ch)
	require.NotEmpty(t, msgs)
	last := msgs[len(msgs)-1]
	assert.Equal(t, StreamClosedAbnormally, last.Signal)
	assert.Error(t, last.Err)
}

func TestOpenStreamDialFailure(t *testing.T) {
	c, err := New(Config{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	ch, cancel, err := c.OpenStream(context.Background(), testRunID)
	require.NoError(t, err)
	defer cancel()

	msgs := collect(t, ch)
	require.Len(t, msgs, 1)
	assert.Equal(t, StreamError, msgs[0].Signal)
	assert.Error(t, msgs[0].Err)
}

func TestOpenStreamCancelEndsWithoutSignal(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SetStream(testRunID, testutil.StreamScript{})
	c := newTestClient(t, backend)

	ch, cancel, err := c.OpenStream(context.Background(), testRunID)
	require.NoError(t, err)

	select {
	case msg := <-ch:
		require.Equal(t, StreamOpened, msg.Signal)
	case <-time.After(5 * time.Second):
		t.Fatalf("no open signal")
	}
	cancel()
	msgs := collect(t, ch)
	assert.Empty(t, msgs)
}
