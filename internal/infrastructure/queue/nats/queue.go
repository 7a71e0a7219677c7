package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"coursecompass/internal/infrastructure/resilience"
)

// Queue carries the reindex lifecycle between processes: the api publishes
// reindex requests, the worker rebuilds and announces the published index
// so api replicas reload their snapshots.
type Queue struct {
	conn             *nats.Conn
	reindexSubject   string
	publishedSubject string
	executor         *resilience.Executor
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func New(url, reindexSubject, publishedSubject string) (*Queue, error) {
	return NewWithOptions(url, reindexSubject, publishedSubject, Options{})
}

func NewWithOptions(url, reindexSubject, publishedSubject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("course-compass"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("nats reconnected: %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:             conn,
		reindexSubject:   reindexSubject,
		publishedSubject: publishedSubject,
		executor:         options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

type indexPublishedEvent struct {
	ChunkCount  int       `json:"chunk_count"`
	PublishedAt time.Time `json:"published_at"`
}

func (q *Queue) PublishReindexRequested(ctx context.Context) error {
	return q.publish(ctx, q.reindexSubject, nil)
}

func (q *Queue) PublishIndexPublished(ctx context.Context, chunkCount int) error {
	payload, err := json.Marshal(indexPublishedEvent{
		ChunkCount:  chunkCount,
		PublishedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal index published event: %w", err)
	}
	return q.publish(ctx, q.publishedSubject, payload)
}

func (q *Queue) publish(ctx context.Context, subject string, payload []byte) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish %s: %w", subject, err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyPublishError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return markTemporary(err)
	}
	return nil
}

// SubscribeReindexRequested joins the worker queue group so only one worker
// rebuilds per request. Blocks until ctx is done, then drains.
func (q *Queue) SubscribeReindexRequested(ctx context.Context, handler func(context.Context) error) error {
	sub, err := q.conn.QueueSubscribe(q.reindexSubject, "index-workers", func(_ *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx); err != nil {
			log.Printf("reindex handler error: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}
	return q.waitAndDrain(ctx, sub)
}

// SubscribeIndexPublished fans out to every api replica, so no queue group.
func (q *Queue) SubscribeIndexPublished(ctx context.Context, handler func(context.Context, int) error) error {
	sub, err := q.conn.Subscribe(q.publishedSubject, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		var event indexPublishedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Printf("index published event decode error: %v", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, event.ChunkCount); err != nil {
			log.Printf("index published handler error: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}
	return q.waitAndDrain(ctx, sub)
}

func (q *Queue) waitAndDrain(ctx context.Context, sub *nats.Subscription) error {
	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
