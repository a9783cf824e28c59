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

func orderedPiece(ref string, stock, onOrder, received int) *models.Piece {
	orderDate := time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)
	return &models.Piece{
		PieceRef:       ref,
		Name:           "Filtre hydraulique",
		StockQty:       stock,
		OnOrderQty:     onOrder,
		ReceivedQty:    received,
		OutstandingQty: onOrder - received,
		OrderDate:      &orderDate,
	}
}

func newReception(pieces *fakePieceStore, ledger *fakeLedger) *Reception {
	r := NewReception(pieces, ledger, nil)
	r.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return r
}

func TestReceiveTotal(t *testing.T) {
	pieces := newFakePieceStore(orderedPiece("PC-1", 2, 10, 3))
	ledger := &fakeLedger{}
	reception := newReception(pieces, ledger)

	result, err := reception.ReceiveTotal(context.Background(), "PC-1", "tech@example.com")
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)

	// Tồn kho tăng đúng bằng phần còn lại (7), các trường đơn hàng về 0.
	assert.Equal(t, 7, result.ReceivedQty)
	assert.Equal(t, 9, result.Piece.StockQty)
	assert.Equal(t, 0, result.Piece.OnOrderQty)
	assert.Equal(t, 0, result.Piece.OutstandingQty)
	assert.Nil(t, result.Piece.OrderDate)

	// Dòng PURCHASE và việc đóng dòng ORDER trong sổ cái.
	require.Len(t, ledger.entries, 1)
	assert.Equal(t, models.OpPurchase, ledger.entries[0].Operation)
	assert.Equal(t, 7, ledger.entries[0].Quantity)
	assert.Equal(t, []string{"PC-1"}, ledger.closed)
}

func TestReceiveTotalWithoutOpenOrder(t *testing.T) {
	pieces := newFakePieceStore(&models.Piece{PieceRef: "PC-1", StockQty: 2})
	reception := newReception(pieces, &fakeLedger{})

	_, err := reception.ReceiveTotal(context.Background(), "PC-1", "tech@example.com")
	assert.ErrorIs(t, err, inventory.ErrInvalidTransition)
}

func TestReceivePartialSequence(t *testing.T) {
	pieces := newFakePieceStore(orderedPiece("PC-1", 0, 10, 0))
	ledger := &fakeLedger{}
	reception := newReception(pieces, ledger)

	// Nhận 4 rồi 6: outstanding 10 -> 6 -> 0, tồn kho 0 -> 4 -> 10.
	result, err := reception.ReceivePartial(context.Background(), "PC-1", 4, "tech@example.com")
	require.NoError(t, err)
	assert.Equal(t, 4, result.Piece.StockQty)
	assert.Equal(t, 6, result.Piece.OutstandingQty)
	assert.Empty(t, ledger.closed)

	result, err = reception.ReceivePartial(context.Background(), "PC-1", 6, "tech@example.com")
	require.NoError(t, err)
	assert.Equal(t, 10, result.Piece.StockQty)
	assert.Equal(t, 0, result.Piece.OutstandingQty)
	assert.Equal(t, 0, result.Piece.OnOrderQty)

	// Lần nhận cuối đóng dòng ORDER.
	assert.Equal(t, []string{"PC-1"}, ledger.closed)
	require.Len(t, ledger.entries, 2)
}

func TestReceivePartialExceedsOutstanding(t *testing.T) {
	pieces := newFakePieceStore(orderedPiece("PC-1", 0, 5, 2))
	reception := newReception(pieces, &fakeLedger{})

	_, err := reception.ReceivePartial(context.Background(), "PC-1", 4, "tech@example.com")
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)

	// Tồn kho không đổi sau lần nhận không hợp lệ.
	piece, findErr := pieces.FindByRef(context.Background(), "PC-1")
	require.NoError(t, findErr)
	assert.Equal(t, 0, piece.StockQty)
	assert.Equal(t, 3, piece.OutstandingQty)
}

func TestReceivePartialInvalidQuantity(t *testing.T) {
	reception := newReception(newFakePieceStore(orderedPiece("PC-1", 0, 5, 0)), &fakeLedger{})

	for _, qty := range []int{0, -1} {
		_, err := reception.ReceivePartial(context.Background(), "PC-1", qty, "tech@example.com")
		assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)
	}
}

func TestReceiveTotalLedgerFailureBecomesWarning(t *testing.T) {
	pieces := newFakePieceStore(orderedPiece("PC-1", 0, 5, 0))
	ledger := &fakeLedger{appendErr: assert.AnError, closeErr: assert.AnError}
	reception := newReception(pieces, ledger)

	result, err := reception.ReceiveTotal(context.Background(), "PC-1", "tech@example.com")
	require.NoError(t, err)

	// Tồn kho đã cập nhật, lỗi sổ cái chỉ là cảnh báo.
	assert.Equal(t, 5, result.Piece.StockQty)
	require.Len(t, result.Warnings, 2)
	assert.Equal(t, "ledger_purchase_entry", result.Warnings[0].Step)
	assert.Equal(t, "close_order_entry", result.Warnings[1].Step)
}
