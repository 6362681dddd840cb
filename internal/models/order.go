package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// LineItem is the single canonical cart/order line shape.
type LineItem struct {
	ID           int64           `json:"id,omitempty"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	RestaurantID int64           `json:"restaurantId,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
	ImageURL     string          `json:"imageUrl,omitempty"`
}

// Order is a pending cart or a confirmed order after normalization.
type Order struct {
	ID              int64           `json:"id"`
	Username        string          `json:"username,omitempty"`
	Status          OrderStatus     `json:"status"`
	RestaurantID    int64           `json:"restaurantId,omitempty"`
	RestaurantName  string          `json:"restaurantName,omitempty"`
	DeliveryAddress *Address        `json:"deliveryAddress,omitempty"`
	Courier         *Courier        `json:"courier,omitempty"`
	Items           []LineItem      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryFee     decimal.Decimal `json:"deliveryFee"`
	PlatformFee     decimal.Decimal `json:"platformFee"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	PlacedAt        *Timestamp      `json:"placedAt,omitempty"`
	DeliveredAt     *Timestamp      `json:"deliveredAt,omitempty"`
}

// wireLine covers every line field name the backend has used.
type wireLine struct {
	ID                int64            `json:"id"`
	ProductID         int64            `json:"productId"`
	ProductName       string           `json:"productName"`
	Name              string           `json:"name"`
	RestaurantID      int64            `json:"restaurantId"`
	Quantity          *int             `json:"quantity"`
	UnitPriceSnapshot *decimal.Decimal `json:"unitPriceSnapshot"`
	UnitPrice         *decimal.Decimal `json:"unitPrice"`
	Price             *decimal.Decimal `json:"price"`
	LineTotal         *decimal.Decimal `json:"lineTotal"`
	ImageURL          string           `json:"imageUrl"`
}

// wireProduct is an entry of the legacy flat product list; one entry per unit.
type wireProduct struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Price        *decimal.Decimal `json:"price"`
	RestaurantID int64            `json:"restaurantId"`
	ImageURL     string           `json:"imageUrl"`
}

type wireOrder struct {
	ID              int64            `json:"id"`
	UserUsername    string           `json:"userUsername"`
	Username        string           `json:"username"`
	Status          OrderStatus      `json:"status"`
	RestaurantID    int64            `json:"restaurantId"`
	RestaurantName  string           `json:"restaurantName"`
	DeliveryAddress *Address         `json:"deliveryAddress"`
	Courier         *Courier         `json:"courier"`
	OrderItems      []wireLine       `json:"orderItems"`
	Items           []wireLine       `json:"items"`
	Products        []wireProduct    `json:"products"`
	LegacyProducts  []wireProduct    `json:"Products"`
	Subtotal        *decimal.Decimal `json:"subtotal"`
	DeliveryFee     *decimal.Decimal `json:"deliveryFee"`
	PlatformFee     *decimal.Decimal `json:"platformFee"`
	Discount        *decimal.Decimal `json:"discount"`
	Total           *decimal.Decimal `json:"total"`
	PlacedAt        *Timestamp       `json:"placedAt"`
	DeliveredAt     *Timestamp       `json:"deliveredAt"`
}

// DecodeOrder parses any known order payload. An empty or null body yields
// a nil order and no error.
func DecodeOrder(raw []byte) (*Order, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var w wireOrder
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return normalizeOrder(&w), nil
}

// DecodeOrders parses a list of order payloads.
func DecodeOrders(raw []byte) ([]Order, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Order{}, nil
	}
	var ws []wireOrder
	if err := json.Unmarshal(raw, &ws); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	orders := make([]Order, 0, len(ws))
	for i := range ws {
		orders = append(orders, *normalizeOrder(&ws[i]))
	}
	return orders, nil
}

func normalizeOrder(w *wireOrder) *Order {
	o := &Order{
		ID:              w.ID,
		Username:        w.UserUsername,
		Status:          w.Status,
		RestaurantID:    w.RestaurantID,
		RestaurantName:  w.RestaurantName,
		DeliveryAddress: w.DeliveryAddress,
		Courier:         w.Courier,
		DeliveryFee:     valueOr(w.DeliveryFee),
		PlatformFee:     valueOr(w.PlatformFee),
		Discount:        valueOr(w.Discount),
		PlacedAt:        w.PlacedAt,
		DeliveredAt:     w.DeliveredAt,
	}
	if o.Username == "" {
		o.Username = w.Username
	}
	if o.DeliveryAddress.IsZero() {
		o.DeliveryAddress = nil
	}

	switch {
	case len(w.OrderItems) > 0:
		o.Items = linesFromWire(w.OrderItems)
	case len(w.Items) > 0:
		o.Items = linesFromWire(w.Items)
	case len(w.LegacyProducts) > 0:
		o.Items = linesFromProducts(w.LegacyProducts)
	case len(w.Products) > 0:
		o.Items = linesFromProducts(w.Products)
	default:
		o.Items = []LineItem{}
	}

	o.Subtotal = o.itemsTotal()
	if w.Subtotal != nil {
		o.Subtotal = *w.Subtotal
	}
	if w.Total != nil {
		o.Total = *w.Total
	} else {
		o.Total = o.Subtotal.Add(o.DeliveryFee).Add(o.PlatformFee).Sub(o.Discount)
	}
	if o.RestaurantID == 0 {
		o.RestaurantID = o.lineRestaurantID()
	}
	return o
}

func linesFromWire(in []wireLine) []LineItem {
	out := make([]LineItem, 0, len(in))
	for _, l := range in {
		qty := 1
		if l.Quantity != nil {
			qty = *l.Quantity
		}
		unit := firstOf(l.UnitPriceSnapshot, l.UnitPrice, l.Price)
		total := unit.Mul(decimal.NewFromInt(int64(qty)))
		if l.LineTotal != nil {
			total = *l.LineTotal
		}
		name := l.ProductName
		if name == "" {
			name = l.Name
		}
		out = append(out, LineItem{
			ID:           l.ID,
			ProductID:    l.ProductID,
			ProductName:  name,
			RestaurantID: l.RestaurantID,
			Quantity:     qty,
			UnitPrice:    unit,
			LineTotal:    total,
			ImageURL:     l.ImageURL,
		})
	}
	return out
}

// linesFromProducts merges repeated products of the flat list into one line.
func linesFromProducts(in []wireProduct) []LineItem {
	out := make([]LineItem, 0, len(in))
	index := make(map[int64]int, len(in))
	for _, p := range in {
		unit := valueOr(p.Price)
		if i, ok := index[p.ID]; ok {
			out[i].Quantity++
			out[i].LineTotal = out[i].LineTotal.Add(unit)
			continue
		}
		index[p.ID] = len(out)
		out = append(out, LineItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			RestaurantID: p.RestaurantID,
			Quantity:     1,
			UnitPrice:    unit,
			LineTotal:    unit,
			ImageURL:     p.ImageURL,
		})
	}
	return out
}

func firstOf(values ...*decimal.Decimal) decimal.Decimal {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return decimal.Zero
}

func valueOr(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}

func (o *Order) itemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.LineTotal)
	}
	return sum
}

func (o *Order) lineRestaurantID() int64 {
	for _, item := range o.Items {
		if item.RestaurantID != 0 {
			return item.RestaurantID
		}
	}
	return 0
}

// IsEmpty reports whether the order has nothing to pay for.
func (o *Order) IsEmpty() bool {
	return o == nil || o.ID == 0 || len(o.Items) == 0
}

// ItemCount is the number of units across all lines.
func (o *Order) ItemCount() int {
	if o == nil {
		return 0
	}
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// QuantityOf returns the quantity of productID in the order.
func (o *Order) QuantityOf(productID int64) int {
	if o == nil {
		return 0
	}
	for _, item := range o.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// SetQuantity updates the line for productID locally and recomputes totals.
// A quantity of zero removes the line. It reports whether the line existed.
func (o *Order) SetQuantity(productID int64, quantity int) bool {
	for i, item := range o.Items {
		if item.ProductID != productID {
			continue
		}
		if quantity <= 0 {
			o.Items = append(o.Items[:i:i], o.Items[i+1:]...)
		} else {
			o.Items[i].Quantity = quantity
			o.Items[i].LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		}
		o.Recalculate()
		return true
	}
	return false
}

// Recalculate derives subtotal and total from the lines.
func (o *Order) Recalculate() {
	o.Subtotal = o.itemsTotal()
	o.Total = o.Subtotal.Add(o.DeliveryFee).Add(o.PlatformFee).Sub(o.Discount)
}

// Clone returns a deep copy suitable for optimistic edits.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append([]LineItem(nil), o.Items...)
	if o.DeliveryAddress != nil {
		addr := *o.DeliveryAddress
		c.DeliveryAddress = &addr
	}
	if o.Courier != nil {
		courier := *o.Courier
		c.Courier = &courier
	}
	return &c
}
