package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/pkg/config"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

var _ inventory.EventPublisher = (*Publisher)(nil)

// Topics destino de cada familia de eventos.
type Topics struct {
	Movements string
	Transfers string
}

// Publisher publica eventos del libro y de traslados en Kafka.
type Publisher struct {
	producer sarama.SyncProducer
	topics   Topics
	log      *logger.Logger
}

// NewPublisher crea el productor síncrono a partir de la configuración.
func NewPublisher(cfg config.KafkaConfig, log *logger.Logger) (*Publisher, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.Retry.Max = 3
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1
	sc.Version = sarama.V2_8_0_0

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("crear productor kafka: %w", err)
	}
	log.Info().Strs("brokers", cfg.Brokers).Msg("publicador kafka inicializado")
	return NewPublisherWithProducer(producer, Topics{Movements: cfg.TopicMovements, Transfers: cfg.TopicTransfers}, log), nil
}

// NewPublisherWithProducer usa un productor ya construido (tests con sarama/mocks).
func NewPublisherWithProducer(producer sarama.SyncProducer, topics Topics, log *logger.Logger) *Publisher {
	return &Publisher{producer: producer, topics: topics, log: log.Component("kafka")}
}

// MovementsRecorded envía un stock.movement.recorded por movimiento en un solo lote.
// La clave es sucursal:producto para conservar el orden por saldo.
func (p *Publisher) MovementsRecorded(ctx context.Context, movements []*entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	ctx, span := otel.Tracer("inventory-kafka").Start(ctx, "kafka.publish.movements",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", p.topics.Movements),
			attribute.String("event.type", EventTypeMovementRecorded),
			attribute.Int("messaging.batch.message_count", len(movements)),
		),
	)
	defer span.End()

	msgs := make([]*sarama.ProducerMessage, 0, len(movements))
	for _, m := range movements {
		ev := newMovementEvent(uuid.NewString(), m)
		msg, err := p.message(ctx, p.topics.Movements, m.BranchID+":"+m.ProductID, ev.EventID, ev.EventType, ev)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "marshal")
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.producer.SendMessages(msgs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send")
		return fmt.Errorf("publicar movimientos: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	p.log.Debug().Int("count", len(msgs)).Str("topic", p.topics.Movements).Msg("movimientos publicados")
	return nil
}

// TransferChanged envía stock.transfer.<status> con la clave del traslado.
func (p *Publisher) TransferChanged(ctx context.Context, t *entity.StockTransfer) error {
	ev := newTransferEvent(uuid.NewString(), t)
	ctx, span := otel.Tracer("inventory-kafka").Start(ctx, "kafka.publish.transfer",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", p.topics.Transfers),
			attribute.String("event.type", ev.EventType),
			attribute.String("transfer.id", t.ID),
		),
	)
	defer span.End()

	msg, err := p.message(ctx, p.topics.Transfers, t.ID, ev.EventID, ev.EventType, ev)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal")
		return err
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send")
		return fmt.Errorf("publicar traslado %s: %w", t.ID, err)
	}
	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "")
	p.log.Debug().
		Str("transfer_id", t.ID).
		Str("event_type", ev.EventType).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("evento de traslado publicado")
	return nil
}

// message serializa el evento e inyecta el contexto de traza en los headers.
func (p *Publisher) message(ctx context.Context, topic, key, eventID, eventType string, payload any) (*sarama.ProducerMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializar evento %s: %w", eventType, err)
	}
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(eventType)},
		{Key: []byte("event_id"), Value: []byte(eventID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	return &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(body),
		Headers: headers,
	}, nil
}

// Close cierra el productor.
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
