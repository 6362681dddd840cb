package models

// OrderStatus is the server-side order lifecycle.
type OrderStatus string

const (
	OrderStatusPending              OrderStatus = "PENDING"
	OrderStatusConfirmed            OrderStatus = "CONFIRMED"
	OrderStatusAcceptedByRestaurant OrderStatus = "ACCEPTED_BY_RESTAURANT"
	OrderStatusInPreparation        OrderStatus = "IN_PREPARATION"
	OrderStatusReadyForPickup       OrderStatus = "READY_FOR_PICKUP"
	OrderStatusPickedUp             OrderStatus = "PICKED_UP"
	OrderStatusEnRoute              OrderStatus = "EN_ROUTE"
	OrderStatusDelivered            OrderStatus = "DELIVERED"
	OrderStatusCanceled             OrderStatus = "CANCELED"
)

// Active reports whether the order is placed and not yet finished.
func (s OrderStatus) Active() bool {
	switch s {
	case OrderStatusPending, OrderStatusDelivered, OrderStatusCanceled, "":
		return false
	}
	return true
}

// OutForDelivery reports whether a courier has the order.
func (s OrderStatus) OutForDelivery() bool {
	return s == OrderStatusPickedUp || s == OrderStatusEnRoute
}

// Label is the human form, e.g. "PICKED UP".
func (s OrderStatus) Label() string {
	out := []byte(s)
	for i, b := range out {
		if b == '_' {
			out[i] = ' '
		}
	}
	return string(out)
}
