package portfolio

import (
	"fmt"
	"time"

	"github.com/antoninodiblasi/IBKR-Backtesting/order"
	"github.com/shopspring/decimal"
)

// New creates a portfolio seeded with opening cash
func New(initialCash decimal.Decimal, baseCurrency string) (*Portfolio, error) {
	if initialCash.IsNegative() {
		return nil, fmt.Errorf("%w, received %v", errNegativeInitialCash, initialCash)
	}
	if baseCurrency == "" {
		baseCurrency = "USD"
	}
	return &Portfolio{
		cash:         initialCash,
		baseCurrency: baseCurrency,
		positions:    make(map[string]*Position),
	}, nil
}

// Cash returns the current cash balance, negative when trading on margin
func (p *Portfolio) Cash() decimal.Decimal {
	return p.cash
}

// BaseCurrency returns the currency the ledger is denominated in
func (p *Portfolio) BaseCurrency() string {
	return p.baseCurrency
}

// GetPosition returns the signed net quantity held for a symbol, zero when
// the symbol has never traded
func (p *Portfolio) GetPosition(symbol string) decimal.Decimal {
	if pos, ok := p.positions[symbol]; ok {
		return pos.Qty
	}
	return decimal.Zero
}

// Positions returns a copy of all position states
func (p *Portfolio) Positions() map[string]Position {
	resp := make(map[string]Position, len(p.positions))
	for symbol, pos := range p.positions {
		resp[symbol] = *pos
	}
	return resp
}

// History returns the append-only fill audit trail
func (p *Portfolio) History() []FillRecord {
	resp := make([]FillRecord, len(p.history))
	copy(resp, p.history)
	return resp
}

// ApplyFill applies one executed order to the ledger. Cash always moves by
// the full notional; the position update falls into one of three cases:
// opening or increasing recomputes the weighted average price, a partial
// reduction realizes PnL on the closed quantity without touching the
// surviving cost basis, and a full close realizes PnL and resets the average
// price. A fill whose quantity crosses through zero is decomposed at the
// boundary: the prior position is closed in full and the remainder opens a
// new position at the fill price
func (p *Portfolio) ApplyFill(symbol string, side order.Side, qty, price decimal.Decimal, ts time.Time) (FillRecord, error) {
	if symbol == "" {
		return FillRecord{}, errSymbolEmpty
	}
	if !qty.IsPositive() {
		return FillRecord{}, fmt.Errorf("%w, received %v", errQtyNotPositive, qty)
	}
	if !price.IsPositive() {
		return FillRecord{}, fmt.Errorf("%w, received %v", errPriceNotPositive, price)
	}

	var signedQty decimal.Decimal
	switch side {
	case order.Buy:
		signedQty = qty
	case order.Sell:
		signedQty = qty.Neg()
	default:
		return FillRecord{}, fmt.Errorf("%w, received %v", errUnknownSide, side)
	}

	pos, ok := p.positions[symbol]
	if !ok {
		pos = &Position{}
		p.positions[symbol] = pos
	}
	prevQty := pos.Qty
	prevAvg := pos.AvgPrice
	newQty := prevQty.Add(signedQty)

	p.cash = p.cash.Sub(signedQty.Mul(price))

	var realizedDelta decimal.Decimal
	switch {
	case prevQty.IsZero() || prevQty.Sign() == signedQty.Sign():
		// opening or same-direction increase: quantity-weighted average
		pos.AvgPrice = prevAvg.Mul(prevQty.Abs()).
			Add(price.Mul(signedQty.Abs())).
			Div(newQty.Abs())
	case newQty.IsZero():
		// full close
		realizedDelta = prevQty.Mul(price.Sub(prevAvg))
		pos.AvgPrice = decimal.Zero
	case prevQty.Sign() == newQty.Sign():
		// partial reduction: realize on the closed quantity, cost basis of
		// the survivors is untouched
		closedQty := decimal.Min(prevQty.Abs(), signedQty.Abs())
		realizedDelta = closedQty.Mul(price.Sub(prevAvg)).
			Mul(decimal.NewFromInt(int64(prevQty.Sign())))
	default:
		// flip through zero: close the prior position in full, the
		// remainder opens fresh at the fill price
		realizedDelta = prevQty.Mul(price.Sub(prevAvg))
		pos.AvgPrice = price
	}

	pos.Qty = newQty
	pos.RealizedPNL = pos.RealizedPNL.Add(realizedDelta)

	record := FillRecord{
		Timestamp:     ts,
		Symbol:        symbol,
		Side:          side,
		Qty:           qty,
		Price:         price,
		CashAfter:     p.cash,
		PositionAfter: pos.Qty,
		AvgPriceAfter: pos.AvgPrice,
		RealizedDelta: realizedDelta,
		RealizedTotal: pos.RealizedPNL,
	}
	p.history = append(p.history, record)
	return record, nil
}

// ApplyCommission deducts a flat commission from cash, once per filled order
func (p *Portfolio) ApplyCommission(commission decimal.Decimal) {
	if !commission.IsPositive() {
		return
	}
	p.cash = p.cash.Sub(commission)
}

// MarkToMarket values the portfolio with the supplied price map. Symbols
// holding an open position without a supplied price are excluded from the
// total rather than valued at zero
func (p *Portfolio) MarkToMarket(prices map[string]decimal.Decimal) decimal.Decimal {
	equity := p.cash
	for symbol, pos := range p.positions {
		price, ok := prices[symbol]
		if !ok {
			continue
		}
		equity = equity.Add(pos.Qty.Mul(price))
	}
	return equity
}

// UnrealizedPNL returns the open profit or loss per symbol present in the
// price map with a non-flat position
func (p *Portfolio) UnrealizedPNL(prices map[string]decimal.Decimal) map[string]decimal.Decimal {
	resp := make(map[string]decimal.Decimal)
	for symbol, pos := range p.positions {
		price, ok := prices[symbol]
		if !ok || pos.Qty.IsZero() {
			continue
		}
		resp[symbol] = pos.Qty.Mul(price.Sub(pos.AvgPrice))
	}
	return resp
}

// Exposures returns the signed market value per symbol present in the price map
func (p *Portfolio) Exposures(prices map[string]decimal.Decimal) map[string]decimal.Decimal {
	resp := make(map[string]decimal.Decimal)
	for symbol, pos := range p.positions {
		price, ok := prices[symbol]
		if !ok {
			continue
		}
		resp[symbol] = pos.Qty.Mul(price)
	}
	return resp
}

// Snapshot captures equity, cash and a copy of the positions at one instant
func (p *Portfolio) Snapshot(prices map[string]decimal.Decimal, ts time.Time) Snapshot {
	return Snapshot{
		Timestamp: ts,
		Equity:    p.MarkToMarket(prices),
		Cash:      p.cash,
		Positions: p.Positions(),
	}
}
