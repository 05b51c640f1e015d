package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/devfeed/internal/logging"
	"github.com/dmitrijs2005/devfeed/internal/server/models"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dmitrijs2005/devfeed/internal/server/events"

// Conn is the part of *nats.Conn the bus needs.
type Conn interface {
	PublishMsg(m *nats.Msg) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// NATSBus publishes changes on "documents.<collection>" and carries the
// caller's trace context in the message headers.
type NATSBus struct {
	nc     Conn
	logger logging.Logger
}

func NewNATSBus(nc Conn, l logging.Logger) *NATSBus {
	return &NATSBus{nc: nc, logger: l.With("module", "nats_bus")}
}

func (b *NATSBus) Publish(ctx context.Context, change models.Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}

	msg := &nats.Msg{
		Subject: Subject(change.Document.Collection),
		Data:    data,
		Header:  nats.Header{},
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	if err := b.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

func (b *NATSBus) Subscribe(_ context.Context, collection string) (<-chan models.Change, func(), error) {
	out := make(chan models.Change, subscriberBuffer)
	done := make(chan struct{})

	sub, err := b.nc.Subscribe(Subject(collection), func(msg *nats.Msg) {
		b.handle(msg, out, done)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("nats subscribe: %w", err)
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			if sub != nil {
				_ = sub.Unsubscribe()
			}
		})
	}
	return out, cancel, nil
}

func (b *NATSBus) handle(msg *nats.Msg, out chan<- models.Change, done <-chan struct{}) {
	ctx := otel.GetTextMapPropagator().Extract(context.Background(), propagation.HeaderCarrier(msg.Header))
	ctx, span := otel.Tracer(tracerName).Start(ctx, "documents.receive",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attribute.String("messaging.destination", msg.Subject)))
	defer span.End()

	var change models.Change
	if err := json.Unmarshal(msg.Data, &change); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid change")
		b.logger.Error(ctx, "invalid change payload", "subject", msg.Subject, "error", err)
		return
	}

	select {
	case out <- change:
	case <-done:
	default:
		b.logger.Warn(ctx, "subscriber lagging, change dropped", "subject", msg.Subject, "id", change.Document.ID)
	}
}
