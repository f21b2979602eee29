package services

import (
	"sort"
	"time"

	"coffee-orders/internal/domain"
)

// DefaultStaleAfter is how long an order may sit untouched in status new
// before the board flags it.
const DefaultStaleAfter = 10 * time.Minute

// Board maps each canonical status to its kanban column, most recently
// touched orders first.
type Board map[domain.OrderStatus][]domain.Order

// ProjectBoard buckets orders by normalized status and sorts each column
// descending by effective timestamp. Orders whose status is outside the
// canonical set after normalization are dropped. Pure function; the sort is
// stable so equal timestamps keep their input order.
func ProjectBoard(orders []domain.Order) Board {
	board := Board{}
	for _, status := range domain.BoardStatuses() {
		board[status] = []domain.Order{}
	}

	for _, order := range orders {
		status := domain.NormalizeStatus(order.Status)
		if !domain.IsCanonical(status) {
			continue
		}
		order.Status = status
		board[status] = append(board[status], order)
	}

	for _, status := range domain.BoardStatuses() {
		column := board[status]
		sort.SliceStable(column, func(i, j int) bool {
			return column[i].EffectiveTime().After(column[j].EffectiveTime())
		})
	}

	return board
}

// IsStale reports whether an order has been waiting unprocessed too long:
// status new (after normalization) and at least staleAfter since creation.
// Orders in any other status are never stale.
func IsStale(createdAt time.Time, status domain.OrderStatus, now time.Time, staleAfter time.Duration) bool {
	if domain.NormalizeStatus(status) != domain.StatusNew {
		return false
	}
	return now.Sub(createdAt) >= staleAfter
}
