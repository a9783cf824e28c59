package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"spare-parts-api-server/internal/models"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		stockQty int
		minQty   int
		want     StockStatus
	}{
		{"below minimum", 2, 5, StatusCritical},
		{"at minimum", 5, 5, StatusLow},
		{"above minimum", 8, 5, StatusOK},
		{"no minimum tracked", 0, 0, StatusOK},
		{"empty stock below minimum", 0, 1, StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.stockQty, tt.minQty))
		})
	}
}

func TestQtyToOrder(t *testing.T) {
	tests := []struct {
		name     string
		stockQty int
		minQty   int
		want     int
	}{
		{"below minimum", 2, 5, 3},
		{"at minimum", 5, 5, 0},
		{"above minimum", 8, 5, 0},
		{"no minimum tracked", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QtyToOrder(tt.stockQty, tt.minQty))
		})
	}
}

func TestNeedsReorder(t *testing.T) {
	tests := []struct {
		name  string
		piece models.Piece
		want  bool
	}{
		{"below minimum without open order", models.Piece{StockQty: 1, MinQty: 4}, true},
		{"below minimum with open order", models.Piece{StockQty: 1, MinQty: 4, OnOrderQty: 3}, false},
		{"at minimum", models.Piece{StockQty: 4, MinQty: 4}, false},
		{"no minimum tracked", models.Piece{StockQty: 0, MinQty: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsReorder(&tt.piece))
		})
	}
}
