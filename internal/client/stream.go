package client

import (
	"context"
	"errors"
	"time"

	"threadwatch/internal/logging"
	"threadwatch/internal/runid"

	"github.com/coder/websocket"
)

type StreamSignal int

const (
	StreamOpened StreamSignal = iota
	StreamFrame
	StreamClosedCleanly
	StreamClosedAbnormally
	StreamError
)

func (s StreamSignal) String() string {
	switch s {
	case StreamOpened:
		return "opened"
	case StreamFrame:
		return "frame"
	case StreamClosedCleanly:
		return "closed_cleanly"
	case StreamClosedAbnormally:
		return "closed_abnormally"
	case StreamError:
		return "error"
	default:
		return "unknown"
	}
}

// StreamMessage is one item delivered by OpenStream. Payload is set for
// StreamFrame; Code and Reason for StreamClosedCleanly; Err for the failure
// signals.
type StreamMessage struct {
	Signal  StreamSignal
	Payload []byte
	Code    int
	Reason  string
	Err     error
}

const streamReadLimit = 4 << 20

// OpenStream subscribes to the progress stream of a run. The id is checked
// before anything is dialed. The returned channel yields StreamOpened, then
// one StreamFrame per text frame, then at most one terminal signal, and is
// closed afterwards. Calling the returned cancel func stops the stream
// without a terminal signal.
func (c *Client) OpenStream(ctx context.Context, id string) (<-chan StreamMessage, func(), error) {
	if err := runid.Validate(id); err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	address := c.streamAddress(id)
	logger := c.logger.With(logging.F("run_id", id))

	ch := make(chan StreamMessage, 256)
	go func() {
		defer close(ch)
		send := func(msg StreamMessage) bool {
			select {
			case ch <- msg:
				return true
			case <-ctx.Done():
				return false
			}
		}

		conn, _, err := websocket.Dial(ctx, address, &websocket.DialOptions{HTTPClient: c.stream})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("stream dial failed", logging.F("err", err))
			send(StreamMessage{Signal: StreamError, Err: err})
			return
		}
		defer conn.CloseNow()
		conn.SetReadLimit(streamReadLimit)
		logger.Debug("stream open", logging.F("url", address))
		if !send(StreamMessage{Signal: StreamOpened}) {
			return
		}

		start := time.Now()
		count := 0
		for {
			_, payload, err := conn.Read(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Debug("stream cancelled", logging.F("frames", count))
					return
				}
				var closeErr websocket.CloseError
				if errors.As(err, &closeErr) {
					logger.Debug("stream closed",
						logging.F("code", int(closeErr.Code)),
						logging.F("reason", closeErr.Reason),
						logging.F("frames", count),
						logging.F("elapsed", time.Since(start)),
					)
					send(StreamMessage{Signal: StreamClosedCleanly, Code: int(closeErr.Code), Reason: closeErr.Reason})
					return
				}
				logger.Warn("stream dropped", logging.F("err", err), logging.F("frames", count))
				send(StreamMessage{Signal: StreamClosedAbnormally, Err: err})
				return
			}
			count++
			if !send(StreamMessage{Signal: StreamFrame, Payload: payload}) {
				return
			}
		}
	}()

	return ch, cancel, nil
}
