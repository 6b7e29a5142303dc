package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
)

const (
	DefaultSubject = "catalog.images.archive"
	DefaultQueue   = "archivers"
)

// headerCarrier adapts nats.Msg headers for trace propagation.
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// QueueArchiver hands requests to archiver workers over NATS.
type QueueArchiver struct {
	Conn    *nats.Conn
	Subject string
}

// Archive publishes req; the upload happens in a worker process.
func (q *QueueArchiver) Archive(ctx context.Context, req Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	msg := &nats.Msg{Subject: q.Subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	if err := q.Conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish archive request: %w", err)
	}
	return nil
}

// Worker consumes archive requests from NATS and runs them through Archiver.
type Worker struct {
	Conn     *nats.Conn
	Subject  string
	Queue    string
	Archiver Archiver
	Logger   *logger.Logger
	// Timeout bounds one request; defaults to five minutes.
	Timeout time.Duration
}

// Run subscribes and blocks until ctx is done, then drains the subscription.
func (w *Worker) Run(ctx context.Context) error {
	sub, err := w.Conn.QueueSubscribe(w.Subject, w.Queue, func(msg *nats.Msg) {
		mctx := otel.GetTextMapPropagator().Extract(context.Background(), (*headerCarrier)(msg))
		if err := w.Handle(mctx, msg.Data); err != nil {
			w.Logger.Warn("archive request failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", w.Subject, err)
	}
	w.Logger.Info("archiver listening", "subject", w.Subject, "queue", w.Queue)

	<-ctx.Done()
	return sub.Drain()
}

// Handle decodes and processes one message body.
func (w *Worker) Handle(ctx context.Context, data []byte) error {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decode archive request: %w", err)
	}
	timeout := w.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return w.Archiver.Archive(ctx, req)
}
