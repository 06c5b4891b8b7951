package closing

import (
	"fmt"

	"cierrecaja/backend/internal/domain"
)

// Snapshot is a validated drawer count: quantity per face value, every face
// value present in the catalog, every quantity non-negative.
type Snapshot map[int64]int

// NewSnapshot validates a raw submission against the catalog. Duplicate
// denominations, negative quantities and face values outside the catalog
// are rejected with ErrInvalidInput.
func (c *Catalog) NewSnapshot(counts []domain.CountedUnit) (Snapshot, error) {
	snapshot := make(Snapshot, len(counts))
	for _, unit := range counts {
		if unit.Quantity < 0 {
			return nil, fmt.Errorf("%w: negative quantity %d for denomination %d", ErrInvalidInput, unit.Quantity, unit.FaceValue)
		}
		if !c.Contains(unit.FaceValue) {
			return nil, fmt.Errorf("%w: unknown denomination %d", ErrInvalidInput, unit.FaceValue)
		}
		if _, dup := snapshot[unit.FaceValue]; dup {
			return nil, fmt.Errorf("%w: duplicate denomination %d", ErrInvalidInput, unit.FaceValue)
		}
		snapshot[unit.FaceValue] = unit.Quantity
	}
	return snapshot, nil
}

// Aggregate partitions the drawer count into coin, bill and grand totals.
func (c *Catalog) Aggregate(snapshot Snapshot) domain.CashTotals {
	var totals domain.CashTotals
	for faceValue, quantity := range snapshot {
		amount := faceValue * int64(quantity)
		switch c.kindByValue[faceValue] {
		case KindCoin:
			totals.Coins += amount
		case KindBill:
			totals.Bills += amount
		}
		totals.Grand += amount
	}
	return totals
}
