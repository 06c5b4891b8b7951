// Package closing implements the cash denomination reconciliation engine:
// counting a drawer, carving out the overnight base via a bounded
// subset-sum search, computing the deposit after declared adjustments, and
// validating registered channel totals against the external sales ledger.
//
// Everything in this package is pure computation. No I/O, no clocks, no
// shared mutable state; a single Engine value is safe for concurrent use.
package closing

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrConfig marks an invalid catalog or engine configuration. The
	// process must refuse to start on it.
	ErrConfig = errors.New("invalid closing configuration")
	// ErrInvalidInput marks a malformed closing submission: negative
	// quantities, unknown denominations, negative adjustment amounts.
	ErrInvalidInput = errors.New("invalid closing input")
	// ErrInfeasibleTarget is returned only for a negative base target,
	// which valid configuration can never produce.
	ErrInfeasibleTarget = errors.New("infeasible base target")
)

type Kind string

const (
	KindCoin Kind = "coin"
	KindBill Kind = "bill"
)

type Denomination struct {
	FaceValue int64
	Kind      Kind
}

// Catalog is the immutable set of valid denominations, loaded once at
// startup. Small ("menudo") denominations are those at or below the
// configured threshold.
type Catalog struct {
	denominations  []Denomination
	kindByValue    map[int64]Kind
	smallThreshold int64
}

func NewCatalog(coins []int64, bills []int64, smallThreshold int64) (*Catalog, error) {
	if len(coins)+len(bills) == 0 {
		return nil, fmt.Errorf("%w: empty denomination catalog", ErrConfig)
	}
	if smallThreshold <= 0 {
		return nil, fmt.Errorf("%w: small-change threshold must be positive", ErrConfig)
	}

	kindByValue := make(map[int64]Kind, len(coins)+len(bills))
	denominations := make([]Denomination, 0, len(coins)+len(bills))
	add := func(values []int64, kind Kind) error {
		for _, v := range values {
			if v <= 0 {
				return fmt.Errorf("%w: non-positive denomination %d", ErrConfig, v)
			}
			if _, dup := kindByValue[v]; dup {
				return fmt.Errorf("%w: duplicate denomination %d", ErrConfig, v)
			}
			kindByValue[v] = kind
			denominations = append(denominations, Denomination{FaceValue: v, Kind: kind})
		}
		return nil
	}
	if err := add(coins, KindCoin); err != nil {
		return nil, err
	}
	if err := add(bills, KindBill); err != nil {
		return nil, err
	}

	sort.Slice(denominations, func(i, j int) bool {
		return denominations[i].FaceValue < denominations[j].FaceValue
	})

	return &Catalog{
		denominations:  denominations,
		kindByValue:    kindByValue,
		smallThreshold: smallThreshold,
	}, nil
}

// Denominations returns the catalog ordered by ascending face value.
func (c *Catalog) Denominations() []Denomination {
	out := make([]Denomination, len(c.denominations))
	copy(out, c.denominations)
	return out
}

func (c *Catalog) Contains(faceValue int64) bool {
	_, ok := c.kindByValue[faceValue]
	return ok
}

func (c *Catalog) KindOf(faceValue int64) (Kind, bool) {
	kind, ok := c.kindByValue[faceValue]
	return kind, ok
}

// IsSmall reports whether a face value counts as menudo.
func (c *Catalog) IsSmall(faceValue int64) bool {
	return faceValue <= c.smallThreshold
}

func (c *Catalog) SmallThreshold() int64 {
	return c.smallThreshold
}
