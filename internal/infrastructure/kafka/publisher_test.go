package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/infrastructure/kafka"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

var topics = kafka.Topics{Movements: "inventory.movements", Transfers: "inventory.transfers"}

func newProducer(t *testing.T) *mocks.SyncProducer {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	return mocks.NewSyncProducer(t, cfg)
}

// ─────────────────────────────────────────────────────────────────────────────
// Caso 1: un evento por movimiento, con el payload del libro.
// ─────────────────────────────────────────────────────────────────────────────

func TestPublisher_MovimientosUnEventoPorMovimiento(t *testing.T) {
	producer := newProducer(t)
	var got []kafka.MovementEvent
	check := func(val []byte) error {
		var ev kafka.MovementEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		got = append(got, ev)
		return nil
	}
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(check)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(check)

	pub := kafka.NewPublisherWithProducer(producer, topics, logger.Nop())
	movs := []*entity.StockMovement{
		{ID: "m1", BranchID: "b1", ProductID: "p1", Type: entity.MovementSale,
			Quantity: decimal.NewFromInt(-3), QuantityBefore: decimal.NewFromInt(10), QuantityAfter: decimal.NewFromInt(7),
			CreatedAt: time.Now()},
		{ID: "m2", BranchID: "b1", ProductID: "p2", Type: entity.MovementPurchase,
			Quantity: decimal.NewFromInt(5), QuantityBefore: decimal.Zero, QuantityAfter: decimal.NewFromInt(5),
			CreatedAt: time.Now()},
	}
	require.NoError(t, pub.MovementsRecorded(context.Background(), movs))
	require.NoError(t, pub.Close())

	require.Len(t, got, 2)
	assert.Equal(t, kafka.EventTypeMovementRecorded, got[0].EventType)
	assert.Equal(t, "m1", got[0].MovementID)
	assert.Equal(t, "SALE", got[0].MovementType)
	assert.True(t, got[0].QuantityAfter.Equal(decimal.NewFromInt(7)))
	assert.NotEmpty(t, got[0].EventID)
	assert.NotEqual(t, got[0].EventID, got[1].EventID)
}

// ─────────────────────────────────────────────────────────────────────────────
// Caso 2: lista vacía no envía nada.
// ─────────────────────────────────────────────────────────────────────────────

func TestPublisher_SinMovimientosNoEnvia(t *testing.T) {
	producer := newProducer(t)
	pub := kafka.NewPublisherWithProducer(producer, topics, logger.Nop())

	require.NoError(t, pub.MovementsRecorded(context.Background(), nil))
	require.NoError(t, pub.Close())
}

// ─────────────────────────────────────────────────────────────────────────────
// Caso 3: transición de traslado con tipo stock.transfer.<status>.
// ─────────────────────────────────────────────────────────────────────────────

func TestPublisher_TrasladoTipoSegunEstado(t *testing.T) {
	producer := newProducer(t)
	var ev kafka.TransferEvent
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		return json.Unmarshal(val, &ev)
	})
	pub := kafka.NewPublisherWithProducer(producer, topics, logger.Nop())

	shipped, received := decimal.NewFromInt(10), decimal.NewFromInt(8)
	tr := &entity.StockTransfer{
		ID: "t1", TransferNumber: "TR-000001", SourceBranchID: "b1", DestinationBranchID: "b2",
		Status: entity.TransferReceived, UpdatedAt: time.Now(),
		Items: []entity.StockTransferItem{{ID: "i1", ProductID: "p1", RequestedQuantity: decimal.NewFromInt(10),
			ShippedQuantity: &shipped, ReceivedQuantity: &received}},
	}
	require.NoError(t, pub.TransferChanged(context.Background(), tr))
	require.NoError(t, pub.Close())

	assert.Equal(t, "stock.transfer.received", ev.EventType)
	assert.Equal(t, "TR-000001", ev.TransferNumber)
	assert.True(t, ev.HasVariance)
	require.Len(t, ev.Items, 1)
	assert.True(t, ev.Items[0].ReceivedQuantity.Equal(received))
}

// ─────────────────────────────────────────────────────────────────────────────
// Caso 4: el error del broker se devuelve (el llamador sólo lo registra).
// ─────────────────────────────────────────────────────────────────────────────

func TestPublisher_ErrorDelBroker(t *testing.T) {
	producer := newProducer(t)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	pub := kafka.NewPublisherWithProducer(producer, topics, logger.Nop())

	err := pub.TransferChanged(context.Background(), &entity.StockTransfer{ID: "t1", Status: entity.TransferCancelled})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sarama.ErrOutOfBrokers))
	require.NoError(t, pub.Close())
}

func TestTransferEventType(t *testing.T) {
	assert.Equal(t, "stock.transfer.in_transit", kafka.TransferEventType(entity.TransferInTransit))
	assert.Equal(t, "stock.transfer.pending", kafka.TransferEventType(entity.TransferPending))
}
