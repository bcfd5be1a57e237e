package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// New validates the supplied parameters and returns a ready to submit order.
// Side and order type are normalised to uppercase before validation. A limit
// price is required for LIMIT orders and ignored for MARKET orders
func New(symbol, side, orderType string, qty, price decimal.Decimal) (*Order, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOrder, errSymbolEmpty)
	}
	s := Side(strings.ToUpper(side))
	if s != Buy && s != Sell {
		return nil, fmt.Errorf("%w: %w %q", ErrInvalidOrder, errUnknownSide, side)
	}
	t := Type(strings.ToUpper(orderType))
	if t != Market && t != Limit {
		return nil, fmt.Errorf("%w: %w %q", ErrInvalidOrder, errUnknownType, orderType)
	}
	if !qty.IsPositive() {
		return nil, fmt.Errorf("%w: %w, received %v", ErrInvalidOrder, errQtyNotPositive, qty)
	}
	if t == Limit && !price.IsPositive() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOrder, errLimitPriceUnset)
	}
	if t == Market {
		price = decimal.Zero
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &Order{
		ID:     id.String(),
		Symbol: symbol,
		Side:   s,
		Type:   t,
		Qty:    qty,
		Price:  price,
	}, nil
}

// SignedQty returns the quantity with buy positive and sell negative
func (o *Order) SignedQty() decimal.Decimal {
	if o.Side == Sell {
		return o.Qty.Neg()
	}
	return o.Qty
}

// Stamp records the execution price and fill time on the order for audit.
// An order timestamp assigned before submission is preserved
func (o *Order) Stamp(price decimal.Decimal, ts time.Time) {
	o.Price = price
	if o.Timestamp.IsZero() {
		o.Timestamp = ts
	}
}

// String implements the stringer interface for debug output
func (o *Order) String() string {
	return fmt.Sprintf("Order(type=%v, side=%v, symbol=%v, qty=%v, price=%v, time=%v)",
		o.Type, o.Side, o.Symbol, o.Qty, o.Price, o.Timestamp)
}
