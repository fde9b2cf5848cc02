package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/prangggshu/legal-chatbot/internal/infrastructure/resilience"
)

const (
	DefaultIngestSubject       = "documents.ingest"
	DefaultIndexUpdatedSubject = "index.updated"

	workerQueueGroup = "workers"
)

type Queue struct {
	conn                *nats.Conn
	ingestSubject       string
	indexUpdatedSubject string
	executor            *resilience.Executor
}

type Options struct {
	IndexUpdatedSubject  string
	ClientName           string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func New(url, ingestSubject string) (*Queue, error) {
	return NewWithOptions(url, ingestSubject, Options{})
}

func NewWithOptions(url, ingestSubject string, options Options) (*Queue, error) {
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
	clientName := options.ClientName
	if clientName == "" {
		clientName = "legal-chatbot"
	}
	if ingestSubject == "" {
		ingestSubject = DefaultIngestSubject
	}
	indexUpdatedSubject := options.IndexUpdatedSubject
	if indexUpdatedSubject == "" {
		indexUpdatedSubject = DefaultIndexUpdatedSubject
	}

	conn, err := nats.Connect(
		url,
		nats.Name(clientName),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:                conn,
		ingestSubject:       ingestSubject,
		indexUpdatedSubject: indexUpdatedSubject,
		executor:            options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishDocumentIngested(ctx context.Context, documentID string) error {
	return q.publish(ctx, q.ingestSubject, documentID)
}

// SubscribeDocumentIngested delivers each ingest event to one worker of the
// queue group and blocks until ctx is done.
func (q *Queue) SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error {
	return q.subscribe(ctx, q.ingestSubject, workerQueueGroup, handler)
}

func (q *Queue) PublishIndexUpdated(ctx context.Context, documentID string) error {
	return q.publish(ctx, q.indexUpdatedSubject, documentID)
}

// SubscribeIndexUpdated delivers every index update to every subscriber, so
// each api replica reloads its snapshot.
func (q *Queue) SubscribeIndexUpdated(ctx context.Context, handler func(context.Context, string) error) error {
	return q.subscribe(ctx, q.indexUpdatedSubject, "", handler)
}

func (q *Queue) publish(ctx context.Context, subject, documentID string) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, []byte(documentID)); err != nil {
			return fmt.Errorf("nats publish %s: %w", subject, err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish."+subject, call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

func (q *Queue) subscribe(ctx context.Context, subject, group string, handler func(context.Context, string) error) error {
	onMessage := func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, string(msg.Data)); err != nil {
			slog.Error("queue_handler_failed", "subject", subject, "document_id", string(msg.Data), "error", err)
		}
	}

	var (
		sub *nats.Subscription
		err error
	)
	if group == "" {
		sub, err = q.conn.Subscribe(subject, onMessage)
	} else {
		sub, err = q.conn.QueueSubscribe(subject, group, onMessage)
	}
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

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
