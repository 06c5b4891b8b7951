package closing

import (
	"fmt"
	"sort"

	"cierrecaja/backend/internal/domain"
)

// AdjustmentPolicy fixes the sign convention for operating expenses and
// loans in the deposit formula. The source system's records only show
// zero-adjustment closings, so both readings are kept as named options.
type AdjustmentPolicy int

const (
	// AdjustmentsDeduct subtracts expenses and loans from the deposit:
	// money already taken out of the drawer during the day. Default.
	AdjustmentsDeduct AdjustmentPolicy = iota
	// AdjustmentsAdd reads them as cash owed back into the deposit.
	AdjustmentsAdd
)

// Adjustments are the cashier-declared corrections for one closing. All
// amounts must be non-negative; channels must be non-empty.
type Adjustments struct {
	SurplusesByChannel map[string]int64
	OperatingExpenses  int64
	Loans              int64
}

func (a Adjustments) validate() error {
	for channel, amount := range a.SurplusesByChannel {
		if channel == "" {
			return fmt.Errorf("%w: surplus with empty channel", ErrInvalidInput)
		}
		if amount < 0 {
			return fmt.Errorf("%w: negative surplus %d for channel %q", ErrInvalidInput, amount, channel)
		}
	}
	if a.OperatingExpenses < 0 {
		return fmt.Errorf("%w: negative operating expenses %d", ErrInvalidInput, a.OperatingExpenses)
	}
	if a.Loans < 0 {
		return fmt.Errorf("%w: negative loans %d", ErrInvalidInput, a.Loans)
	}
	return nil
}

func (a Adjustments) totalSurplus() int64 {
	var total int64
	for _, amount := range a.SurplusesByChannel {
		total += amount
	}
	return total
}

// cashSurplus is the surplus declared on the cash channel only. Only that
// part participates in the cash-sale figure the ledger is compared against.
func (a Adjustments) cashSurplus() int64 {
	return a.SurplusesByChannel["cash"] + a.SurplusesByChannel["efectivo"]
}

func (a Adjustments) summary() domain.AdjustmentSummary {
	byChannel := make(map[string]int64, len(a.SurplusesByChannel))
	channels := make([]string, 0, len(a.SurplusesByChannel))
	for channel := range a.SurplusesByChannel {
		channels = append(channels, channel)
	}
	sort.Strings(channels)
	for _, channel := range channels {
		byChannel[channel] = a.SurplusesByChannel[channel]
	}
	return domain.AdjustmentSummary{
		SurplusesByChannel: byChannel,
		TotalSurplus:       a.totalSurplus(),
		OperatingExpenses:  a.OperatingExpenses,
		Loans:              a.Loans,
	}
}

// computeDeposit derives the amount to bank after retaining the base.
// Under the default policy:
//
//	deposit = grandTotal − base − Σ surpluses − expenses − loans
//
// A negative result is legitimate data for human review, never clamped.
func computeDeposit(grandTotal int64, achievedSum int64, adj Adjustments, policy AdjustmentPolicy) (deposit int64, negative bool) {
	deposit = grandTotal - achievedSum - adj.totalSurplus()
	if policy == AdjustmentsAdd {
		deposit += adj.OperatingExpenses + adj.Loans
	} else {
		deposit -= adj.OperatingExpenses + adj.Loans
	}
	return deposit, deposit < 0
}
