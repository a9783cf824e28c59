// server/internal/inventory/evaluator.go
package inventory

import "spare-parts-api-server/internal/models"

// StockStatus là mức đánh giá tồn kho của một linh kiện.
type StockStatus string

const (
	StatusCritical StockStatus = "CRITICAL" // Tồn kho dưới ngưỡng tối thiểu
	StatusLow      StockStatus = "LOW"      // Tồn kho đúng bằng ngưỡng tối thiểu
	StatusOK       StockStatus = "OK"
)

// Status đánh giá tồn kho so với ngưỡng tối thiểu.
// Ngưỡng 0 nghĩa là linh kiện không theo dõi tồn kho tối thiểu.
func Status(stockQty, minQty int) StockStatus {
	switch {
	case stockQty < minQty:
		return StatusCritical
	case stockQty == minQty && minQty > 0:
		return StatusLow
	default:
		return StatusOK
	}
}

// QtyToOrder tính số lượng cần đặt để đưa tồn kho về ngưỡng tối thiểu.
func QtyToOrder(stockQty, minQty int) int {
	if minQty > 0 && stockQty < minQty {
		return minQty - stockQty
	}
	return 0
}

// NeedsReorder cho biết linh kiện có cần đặt hàng bổ sung không:
// chưa có đơn nào đang mở và tồn kho đã tụt dưới ngưỡng tối thiểu.
func NeedsReorder(p *models.Piece) bool {
	return p.OnOrderQty <= 0 && p.MinQty > 0 && p.StockQty < p.MinQty
}
