package domain

import "errors"

type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusInProgress OrderStatus = "in_progress"
	StatusReady      OrderStatus = "ready"
	StatusCompleted  OrderStatus = "completed"
)

// Legacy values still present on old rows. Normalized on read, never
// rewritten in the store.
const (
	legacyAccepted  OrderStatus = "accepted"
	legacyPreparing OrderStatus = "preparing"
)

var canonicalStatuses = map[OrderStatus]struct{}{
	StatusNew:        {},
	StatusInProgress: {},
	StatusReady:      {},
	StatusCompleted:  {},
}

var legacyStatusMap = map[OrderStatus]OrderStatus{
	legacyAccepted:  StatusInProgress,
	legacyPreparing: StatusInProgress,
}

var nextStatusMap = map[OrderStatus]OrderStatus{
	StatusNew:        StatusInProgress,
	StatusInProgress: StatusReady,
	StatusReady:      StatusCompleted,
}

var ErrInvalidStatus = errors.New("invalid order status")

// NormalizeStatus maps legacy aliases onto the canonical set. Idempotent;
// unknown values pass through unchanged.
func NormalizeStatus(s OrderStatus) OrderStatus {
	if mapped, ok := legacyStatusMap[s]; ok {
		return mapped
	}
	return s
}

// IsCanonical reports whether s is one of the four board statuses, without
// normalizing first.
func IsCanonical(s OrderStatus) bool {
	_, ok := canonicalStatuses[s]
	return ok
}

// NextStatus returns the single successor in the lifecycle chain.
// completed is terminal, so ok is false.
func NextStatus(s OrderStatus) (OrderStatus, bool) {
	next, ok := nextStatusMap[s]
	return next, ok
}

// ToOrderStatus parses a raw string into a canonical status, accepting
// legacy aliases.
func ToOrderStatus(s string) (OrderStatus, error) {
	status := NormalizeStatus(OrderStatus(s))
	if !IsCanonical(status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// BoardStatuses returns the kanban columns in display order.
func BoardStatuses() []OrderStatus {
	return []OrderStatus{StatusNew, StatusInProgress, StatusReady, StatusCompleted}
}
