package procurement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spare-parts-api-server/internal/inventory"
	"spare-parts-api-server/internal/models"
)

func newSaga(pieces *fakePieceStore, subs *fakeSubmissionStore, ledger *fakeLedger, notifier *fakeNotifier) *OrderPlacementSaga {
	saga := NewOrderPlacementSaga(pieces, subs, ledger, notifier, nil)
	saga.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	saga.newRef = func() string { return "SUB-AUTO0001" }
	return saga
}

func orderInput() PlaceOrderInput {
	return PlaceOrderInput{
		PieceRef:  "PC-1",
		Qty:       5,
		UnitPrice: 10.0,
		Note:      "commande urgente",
		Actor:     "tech@example.com",
	}
}

func TestPlaceOrderHappyPath(t *testing.T) {
	pieces := newFakePieceStore(stockPiece("PC-1", 12.5))
	subs := newFakeSubmissionStore(sentSubmission("SUB-1", "PC-1"))
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{}
	saga := newSaga(pieces, subs, ledger, notifier)

	result, err := saga.PlaceOrder(context.Background(), orderInput())
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)

	// Bước 1: đơn hàng ghi lên linh kiện.
	assert.Equal(t, 5, result.Piece.OnOrderQty)
	assert.Equal(t, 5, result.Piece.OutstandingQty)
	assert.Equal(t, 0, result.Piece.ReceivedQty)
	assert.Equal(t, 10.0, result.Piece.UnitPrice)

	// Bước 2: dòng ORDER trong sổ cái.
	require.Len(t, ledger.entries, 1)
	assert.Equal(t, models.OpOrder, ledger.entries[0].Operation)
	assert.Equal(t, 5, ledger.entries[0].Quantity)

	// Bước 3-4: submission đang mở được chuyển sang ORDERED.
	sub, err := subs.FindByRef(context.Background(), "SUB-1")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionOrdered, sub.Status)
	assert.Equal(t, "SUB-1", result.SubmissionRef)

	// Bước 5: báo giá theo giá đặt.
	assert.Contains(t, subs.quotes, "SUB-1|PC-1")

	assert.Equal(t, 1, notifier.orders)
}

func TestPlaceOrderCreatesSubmissionWhenNoneOpen(t *testing.T) {
	pieces := newFakePieceStore(stockPiece("PC-1", 12.5))
	subs := newFakeSubmissionStore()
	saga := newSaga(pieces, subs, &fakeLedger{}, &fakeNotifier{})

	result, err := saga.PlaceOrder(context.Background(), orderInput())
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, "SUB-AUTO0001", result.SubmissionRef)

	sub, err := subs.FindByRef(context.Background(), "SUB-AUTO0001")
	require.NoError(t, err)
	assert.True(t, sub.AutoCreated)
	assert.Equal(t, models.SubmissionOrdered, sub.Status)
	require.Len(t, sub.Lines, 1)
	assert.Equal(t, "PC-1", sub.Lines[0].PieceRef)
}

func TestPlaceOrderStepOneFailureIsFatal(t *testing.T) {
	pieces := newFakePieceStore()
	subs := newFakeSubmissionStore()
	ledger := &fakeLedger{}
	saga := newSaga(pieces, subs, ledger, &fakeNotifier{})

	_, err := saga.PlaceOrder(context.Background(), orderInput())
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	// Không bước phụ nào chạy khi bước 1 thất bại.
	assert.Empty(t, ledger.entries)
	assert.Empty(t, subs.subs)
}

func TestPlaceOrderInvalidQuantity(t *testing.T) {
	saga := newSaga(newFakePieceStore(stockPiece("PC-1", 1)), newFakeSubmissionStore(), &fakeLedger{}, &fakeNotifier{})

	for _, qty := range []int{0, -3} {
		input := orderInput()
		input.Qty = qty
		_, err := saga.PlaceOrder(context.Background(), input)
		assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)
	}
}

func TestPlaceOrderCollaboratorFailureBecomesWarning(t *testing.T) {
	pieces := newFakePieceStore(stockPiece("PC-1", 12.5))
	subs := newFakeSubmissionStore(sentSubmission("SUB-1", "PC-1"))
	ledger := &fakeLedger{appendErr: assert.AnError}
	saga := newSaga(pieces, subs, ledger, &fakeNotifier{})

	result, err := saga.PlaceOrder(context.Background(), orderInput())
	require.NoError(t, err)

	// Đơn hàng vẫn đặt thành công, lỗi sổ cái trở thành cảnh báo có tên bước.
	assert.Equal(t, 5, result.Piece.OnOrderQty)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "ledger_order_entry", result.Warnings[0].Step)
}

func TestPlaceOrderExistingQuoteIsKept(t *testing.T) {
	pieces := newFakePieceStore(stockPiece("PC-1", 12.5))
	subs := newFakeSubmissionStore(sentSubmission("SUB-1", "PC-1"))
	subs.quotes["SUB-1|PC-1"] = &models.PriceQuote{SubmissionRef: "SUB-1", PieceRef: "PC-1", UnitPrice: 7.77}
	saga := newSaga(pieces, subs, &fakeLedger{}, &fakeNotifier{})

	result, err := saga.PlaceOrder(context.Background(), orderInput())
	require.NoError(t, err)

	// Báo giá đã có không bị ghi đè và không sinh cảnh báo.
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 7.77, subs.quotes["SUB-1|PC-1"].UnitPrice)
}

func TestPlaceOrderAttachesDocument(t *testing.T) {
	pieces := newFakePieceStore(stockPiece("PC-1", 12.5))
	subs := newFakeSubmissionStore(sentSubmission("SUB-1", "PC-1"))
	saga := newSaga(pieces, subs, &fakeLedger{}, &fakeNotifier{})

	input := orderInput()
	input.DocumentKey = "commandes/PC-1/bon.pdf"
	_, err := saga.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	sub, err := subs.FindByRef(context.Background(), "SUB-1")
	require.NoError(t, err)
	assert.Equal(t, "commandes/PC-1/bon.pdf", sub.AttachmentKey)
}

func TestPlaceOrderMultipleWarningsAccumulate(t *testing.T) {
	pieces := newFakePieceStore(stockPiece("PC-1", 12.5))
	subs := newFakeSubmissionStore(sentSubmission("SUB-1", "PC-1"))
	subs.transitionErr = assert.AnError
	ledger := &fakeLedger{appendErr: assert.AnError}
	saga := newSaga(pieces, subs, ledger, &fakeNotifier{err: assert.AnError})

	result, err := saga.PlaceOrder(context.Background(), orderInput())
	require.NoError(t, err)

	steps := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		steps = append(steps, w.Step)
	}
	assert.Equal(t, []string{"ledger_order_entry", "submission_ordered", "notify_order_placed"}, steps)
}
