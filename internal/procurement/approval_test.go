package procurement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spare-parts-api-server/internal/inventory"
	"spare-parts-api-server/internal/models"
)

func pendingPiece(ref string) *models.Piece {
	return &models.Piece{PieceRef: ref, Name: "Roulement 6204", ApprovalStatus: models.ApprovalPending}
}

func TestApprovalGateApprove(t *testing.T) {
	pieces := newFakePieceStore(pendingPiece("PC-1"))
	notifier := &fakeNotifier{}
	gate := NewApprovalGate(pieces, notifier, nil)

	piece, err := gate.Approve(context.Background(), "PC-1", "chef@example.com", "ok for purchase")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, piece.ApprovalStatus)
	assert.Equal(t, "chef@example.com", piece.ApprovalActor)
	assert.Equal(t, 1, notifier.decisions)
}

func TestApprovalGateApproveTwice(t *testing.T) {
	pieces := newFakePieceStore(pendingPiece("PC-1"))
	gate := NewApprovalGate(pieces, &fakeNotifier{}, nil)

	_, err := gate.Approve(context.Background(), "PC-1", "chef@example.com", "")
	require.NoError(t, err)

	_, err = gate.Approve(context.Background(), "PC-1", "chef@example.com", "")
	assert.ErrorIs(t, err, inventory.ErrInvalidTransition)
}

func TestApprovalGateRefuseRequiresNote(t *testing.T) {
	pieces := newFakePieceStore(pendingPiece("PC-1"))
	gate := NewApprovalGate(pieces, &fakeNotifier{}, nil)

	_, err := gate.Refuse(context.Background(), "PC-1", "chef@example.com", "  ")
	assert.ErrorIs(t, err, inventory.ErrValidation)

	// Linh kiện vẫn PENDING sau khi từ chối không hợp lệ.
	piece, err := pieces.FindByRef(context.Background(), "PC-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, piece.ApprovalStatus)
}

func TestApprovalGateResetAfterRefuse(t *testing.T) {
	pieces := newFakePieceStore(pendingPiece("PC-1"))
	gate := NewApprovalGate(pieces, &fakeNotifier{}, nil)

	_, err := gate.Refuse(context.Background(), "PC-1", "chef@example.com", "too expensive")
	require.NoError(t, err)

	piece, err := gate.Reset(context.Background(), "PC-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, piece.ApprovalStatus)
	assert.Empty(t, piece.ApprovalNote)
	assert.Empty(t, piece.ApprovalActor)
}

func TestApprovalGateResetRequiresRefused(t *testing.T) {
	pieces := newFakePieceStore(pendingPiece("PC-1"))
	gate := NewApprovalGate(pieces, &fakeNotifier{}, nil)

	_, err := gate.Reset(context.Background(), "PC-1")
	assert.ErrorIs(t, err, inventory.ErrInvalidTransition)
}

func TestApprovalGateSubmitIdempotent(t *testing.T) {
	pieces := newFakePieceStore(pendingPiece("PC-1"))
	gate := NewApprovalGate(pieces, &fakeNotifier{}, nil)

	_, err := gate.Submit(context.Background(), "PC-1", "tech@example.com")
	require.NoError(t, err)

	piece, err := gate.Submit(context.Background(), "PC-1", "tech2@example.com")
	require.NoError(t, err)
	assert.Equal(t, "tech2@example.com", piece.ApprovalRequestedBy)
}

func TestApprovalGateNotifierFailureDoesNotBlock(t *testing.T) {
	pieces := newFakePieceStore(pendingPiece("PC-1"))
	notifier := &fakeNotifier{err: assert.AnError}
	gate := NewApprovalGate(pieces, notifier, nil)

	piece, err := gate.Approve(context.Background(), "PC-1", "chef@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, piece.ApprovalStatus)
}

func TestApprovalGateUnknownPiece(t *testing.T) {
	gate := NewApprovalGate(newFakePieceStore(), &fakeNotifier{}, nil)

	_, err := gate.Approve(context.Background(), "PC-missing", "chef@example.com", "")
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}
