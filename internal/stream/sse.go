// Package stream serves server-sent events over Fiber's fasthttp stream writer.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// DefaultKeepAlive is how often an idle stream sends a comment line.
const DefaultKeepAlive = 20 * time.Second

// Event is one server-sent event. Data is JSON-encoded.
type Event struct {
	Name string
	Data any
}

// Emit queues an event. It returns false once the client has gone away.
type Emit func(Event) bool

// Producer feeds a stream until ctx is cancelled or it has nothing more to send.
type Producer func(ctx context.Context, emit Emit)

// Serve turns the response into an event stream fed by produce. The producer
// runs on its own goroutine; ctx is cancelled when the client disconnects.
func Serve(c *fiber.Ctx, keepAlive time.Duration, produce Producer) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events := make(chan Event, 32)
		emit := func(e Event) bool {
			select {
			case events <- e:
				return true
			case <-ctx.Done():
				return false
			}
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			produce(ctx, emit)
		}()

		_ = Pump(ctx, w, events, done, keepAlive)
		cancel()
		<-done
	}))
	return nil
}

// Pump writes events to w until ctx ends, the producer signals done, or a
// write fails. Idle periods longer than keepAlive get a comment line so
// proxies keep the connection open.
func Pump(ctx context.Context, w *bufio.Writer, events <-chan Event, done <-chan struct{}, keepAlive time.Duration) error {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-events:
			if err := Write(w, e); err != nil {
				return err
			}
		case <-done:
			for {
				select {
				case e := <-events:
					if err := Write(w, e); err != nil {
						return err
					}
				default:
					return nil
				}
			}
		case <-ticker.C:
			if _, err := w.WriteString(": ping\n\n"); err != nil {
				return err
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
}

// Write encodes e in text/event-stream framing and flushes it.
func Write(w *bufio.Writer, e Event) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", e.Name, err)
	}
	if e.Name != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", e.Name); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
