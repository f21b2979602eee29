package domain

const OrdersTable = "orders"

type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeUpdate ChangeKind = "UPDATE"
)

// OrderChangeEvent is the payload carried on the orders change feed and
// posted to the orders webhook: the kind of change plus the new and old rows.
type OrderChangeEvent struct {
	Type      ChangeKind `json:"type"`
	Table     string     `json:"table"`
	Record    *Order     `json:"record"`
	OldRecord *Order     `json:"old_record,omitempty"`
}
