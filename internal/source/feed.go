package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"nhooyr.io/websocket"
)

// maxEventSize bounds a single line or message. Long string events can carry
// whole response bodies.
const maxEventSize = 32 << 20

// Replay reads newline delimited events from r. Blank lines, events of an
// unknown type and updates without an id are skipped. Any other failure stops
// the replay.
func Replay(ctx context.Context, r io.Reader, sink Sink) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		if err := handle(ctx, raw, sink); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read events: %w", err)
	}
	return nil
}

// Dial consumes a live feed where every text message is one event. It
// returns nil when the server closes normally or ctx is cancelled.
func Dial(ctx context.Context, url string, sink Sink) error {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(maxEventSize)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		if typ != websocket.MessageText || len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		if err := handle(ctx, data, sink); err != nil {
			return err
		}
	}
}

func handle(ctx context.Context, raw []byte, sink Sink) error {
	ev, err := Decode(raw)
	if err != nil {
		return err
	}
	err = sink.Handle(ctx, ev)
	if errors.Is(err, ErrUnknownEvent) || errors.Is(err, ErrMissingID) {
		return nil
	}
	return err
}
