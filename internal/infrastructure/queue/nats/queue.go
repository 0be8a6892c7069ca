package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
	"github.com/kirillkom/resume-sorter/internal/infrastructure/resilience"
)

// Queue carries sort requests in and run reports out.
type Queue struct {
	conn          *nats.Conn
	sortSubject   string
	resultSubject string
	executor      *resilience.Executor
}

type Options struct {
	SortSubject   string
	ResultSubject string

	ConnectTimeout time.Duration
	ReconnectWait  time.Duration
	MaxReconnects  int
	// FailFast disables the background retry of the initial connection.
	FailFast           bool
	ResilienceExecutor *resilience.Executor
}

func (o Options) withDefaults() Options {
	if o.SortSubject == "" {
		o.SortSubject = "resumes.sort.requested"
	}
	if o.ResultSubject == "" {
		o.ResultSubject = "resumes.sort.completed"
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 2 * time.Second
	}
	if o.ReconnectWait <= 0 {
		o.ReconnectWait = 2 * time.Second
	}
	if o.MaxReconnects <= 0 {
		o.MaxReconnects = 60
	}
	return o
}

func New(url string, options Options) (*Queue, error) {
	options = options.withDefaults()

	conn, err := nats.Connect(url,
		nats.Name("resume-sorter"),
		nats.Timeout(options.ConnectTimeout),
		nats.ReconnectWait(options.ReconnectWait),
		nats.MaxReconnects(options.MaxReconnects),
		nats.RetryOnFailedConnect(!options.FailFast),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return newQueue(conn, options), nil
}

func newQueue(conn *nats.Conn, options Options) *Queue {
	options = options.withDefaults()
	return &Queue{
		conn:          conn,
		sortSubject:   options.SortSubject,
		resultSubject: options.ResultSubject,
		executor:      options.ResilienceExecutor,
	}
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishRunCompleted(ctx context.Context, report *domain.RunReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	return q.publish(ctx, q.resultSubject, payload)
}

// PublishSortRequest enqueues a run for a worker.
func (q *Queue) PublishSortRequest(ctx context.Context, req domain.SortRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal sort request: %w", err)
	}
	return q.publish(ctx, q.sortSubject, payload)
}

func (q *Queue) publish(ctx context.Context, subject string, payload []byte) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor == nil {
		return wrapTemporaryIfNeeded(call(ctx))
	}
	return wrapTemporaryIfNeeded(q.executor.Execute(ctx, "nats.publish", call, classifyNATSError))
}

// SubscribeSortRequests blocks until ctx is done, running handler for every
// decoded request. Workers share the "sorters" queue group so each request
// is handled once.
func (q *Queue) SubscribeSortRequests(ctx context.Context, handler func(context.Context, domain.SortRequest) error) error {
	sub, err := q.conn.QueueSubscribe(q.sortSubject, "sorters", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		req, err := decodeSortRequest(msg.Data)
		if err != nil {
			slog.Error("sort_request_decode_failed", "subject", msg.Subject, "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, req); err != nil {
			slog.Error("sort_request_failed", "root", req.Root, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
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

func decodeSortRequest(data []byte) (domain.SortRequest, error) {
	var req domain.SortRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return domain.SortRequest{}, domain.WrapError(domain.ErrInvalidInput, "decode sort request", err)
	}
	return req, nil
}
