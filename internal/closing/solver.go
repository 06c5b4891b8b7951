package closing

import (
	"fmt"

	"cierrecaja/backend/internal/domain"
)

// TiePolicy resolves the case where two reachable sums sit at the same
// distance from the target, one below and one above.
type TiePolicy int

const (
	// TiePreferLower keeps the base short and reports a shortage. Default.
	TiePreferLower TiePolicy = iota
	// TiePreferHigher overfills the base and reports a surplus.
	TiePreferHigher
)

const unreachable = int64(-1) << 62

// maxSolvableTotal caps the DP table. Realistic daily drawers are in the
// low millions of pesos; anything past this is a malformed submission, not
// a bigger drawer.
const maxSolvableTotal = 100_000_000

// solvePartition finds the quantity assignment, bounded by the counted
// quantities, whose sum is closest to target. Bounded knapsack over
// reachable sums [0, grandTotal] with binary decomposition of each
// denomination's count; the DP value maximizes the small-denomination
// content of the base so the deposit remainder keeps the large bills.
func solvePartition(c *Catalog, snapshot Snapshot, target int64, tie TiePolicy) (domain.Partition, error) {
	if target < 0 {
		return domain.Partition{}, fmt.Errorf("%w: target %d", ErrInfeasibleTarget, target)
	}

	grand := c.Aggregate(snapshot).Grand
	if grand > maxSolvableTotal {
		return domain.Partition{}, fmt.Errorf("%w: counted total %d exceeds limit %d", ErrInvalidInput, grand, maxSolvableTotal)
	}

	size := int(grand) + 1
	value := make([]int64, size)
	for s := 1; s < size; s++ {
		value[s] = unreachable
	}

	// One reconstruction layer per denomination: how many of its units the
	// best path to each sum carries after that denomination's stage. A
	// single shared parent array would be overwritten by later stages and
	// could chain the same bounded item twice, breaking the counted bounds.
	type stageLayer struct {
		face  int64
		count []int32
	}
	layers := make([]stageLayer, 0, len(c.denominations))

	// Ascending catalog order keeps the reconstruction deterministic and
	// biases ties toward filling the base with the smallest denominations.
	for _, denom := range c.denominations {
		quantity := snapshot[denom.FaceValue]
		if quantity <= 0 {
			continue
		}
		smallWorth := int64(0)
		if c.IsSmall(denom.FaceValue) {
			smallWorth = denom.FaceValue
		}
		count := make([]int32, size)
		for _, k := range binaryParts(quantity) {
			weight := denom.FaceValue * int64(k)
			worth := smallWorth * int64(k)
			w := int(weight)
			// Descending order: within this pass value[s-w] and count[s-w]
			// are still pre-pass, so each binary part enters a path once.
			for s := size - 1; s >= w; s-- {
				if value[s-w] == unreachable {
					continue
				}
				if candidate := value[s-w] + worth; candidate > value[s] {
					value[s] = candidate
					count[s] = count[s-w] + int32(k)
				}
			}
		}
		layers = append(layers, stageLayer{face: denom.FaceValue, count: count})
	}

	best := closestReachable(value, grand, target, tie)

	used := make(map[int64]int, len(snapshot))
	remainder := make(map[int64]int, len(snapshot))
	for faceValue, quantity := range snapshot {
		used[faceValue] = 0
		remainder[faceValue] = quantity
	}
	// Backtrack stage by stage: peel each denomination's units off the sum,
	// landing on a sum that was reachable before that stage ran.
	s := int(best)
	for i := len(layers) - 1; i >= 0; i-- {
		layer := layers[i]
		k := int(layer.count[s])
		if k == 0 {
			continue
		}
		used[layer.face] += k
		remainder[layer.face] -= k
		s -= int(layer.face) * k
	}

	return domain.Partition{
		AchievedSum: best,
		Exact:       best == target,
		UnitsUsed:   used,
		Remainder:   remainder,
	}, nil
}

// closestReachable scans outward from the target until it hits a reachable
// sum, resolving equidistant pairs via the tie policy. Sum 0 is always
// reachable, so the scan terminates.
func closestReachable(value []int64, grand int64, target int64, tie TiePolicy) int64 {
	reachable := func(s int64) bool {
		return s >= 0 && s <= grand && value[s] != unreachable
	}

	if reachable(target) {
		return target
	}
	for delta := int64(1); ; delta++ {
		lower, higher := target-delta, target+delta
		lowerOK, higherOK := reachable(lower), reachable(higher)
		switch {
		case lowerOK && higherOK:
			if tie == TiePreferHigher {
				return higher
			}
			return lower
		case lowerOK:
			return lower
		case higherOK:
			return higher
		}
	}
}

// binaryParts splits a count into powers of two plus a remainder, so each
// part enters the DP as a distinct 0/1 item: 7 -> [1 2 4], 8 -> [1 2 4 1].
func binaryParts(count int) []int {
	parts := make([]int, 0, 8)
	k := 1
	for k <= count {
		parts = append(parts, k)
		count -= k
		k *= 2
	}
	if count > 0 {
		parts = append(parts, count)
	}
	return parts
}
