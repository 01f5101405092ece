package models

// OrderStatus is the fulfilment axis of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPacked    OrderStatus = "dikemas"
	OrderShipped   OrderStatus = "dikirim"
	OrderCompleted OrderStatus = "selesai"
	OrderCancelled OrderStatus = "batal"
)

// PaymentStatus is the payment axis of an order, tracked independently of
// the fulfilment status.
type PaymentStatus string

const (
	PaymentUnpaid    PaymentStatus = "unpaid"
	PaymentPaid      PaymentStatus = "paid"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
	PaymentExpired   PaymentStatus = "expired"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentDenied    PaymentStatus = "denied"
)

// AllowedTransitions lists the statuses an admin may move an order into,
// keyed by current status. batal and selesai are terminal.
var AllowedTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderPacked, OrderCancelled},
	OrderPacked:    {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderCompleted},
	OrderCancelled: {},
	OrderCompleted: {},
}

// CanTransition reports whether an admin-driven move from one order status
// to another is permitted.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// OrderStatusValues returns every known order status, for request
// validation and admin filter options.
func OrderStatusValues() []OrderStatus {
	return []OrderStatus{OrderPending, OrderPacked, OrderShipped, OrderCompleted, OrderCancelled}
}

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s OrderStatus) bool {
	for _, v := range OrderStatusValues() {
		if v == s {
			return true
		}
	}
	return false
}

// paymentRank orders payment statuses by how far the payment has
// progressed. Gateway notifications can arrive out of order; a callback
// whose implied status ranks below the order's current one is stale and
// must not regress it.
var paymentRank = map[PaymentStatus]int{
	PaymentUnpaid:    0,
	PaymentPending:   1,
	PaymentFailed:    2,
	PaymentExpired:   2,
	PaymentCancelled: 2,
	PaymentDenied:    2,
	PaymentPaid:      3,
}

// Regresses reports whether moving from the current payment status to next
// would move backwards in payment progress.
func (s PaymentStatus) Regresses(next PaymentStatus) bool {
	return paymentRank[next] < paymentRank[s]
}
