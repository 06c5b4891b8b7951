package closing

import (
	"fmt"

	"cierrecaja/backend/internal/domain"
)

// Options carry the process-wide closing policies. Zero values give the
// documented defaults: tie-break toward the lower sum, adjustments
// deducted from the deposit, materiality equal to the small-change
// threshold.
type Options struct {
	BaseTarget           int64
	MaterialityThreshold int64
	TiePolicy            TiePolicy
	AdjustmentPolicy     AdjustmentPolicy
}

// Engine is the stateless per-closing computation bound to one immutable
// catalog and option set. Construct once at startup, share freely.
type Engine struct {
	catalog *Catalog
	opts    Options
}

func NewEngine(catalog *Catalog, opts Options) (*Engine, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: nil catalog", ErrConfig)
	}
	if opts.BaseTarget <= 0 {
		return nil, fmt.Errorf("%w: base target must be positive, got %d", ErrConfig, opts.BaseTarget)
	}
	if opts.MaterialityThreshold < 0 {
		return nil, fmt.Errorf("%w: negative materiality threshold %d", ErrConfig, opts.MaterialityThreshold)
	}
	if opts.MaterialityThreshold == 0 {
		opts.MaterialityThreshold = catalog.SmallThreshold()
	}
	return &Engine{catalog: catalog, opts: opts}, nil
}

func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

func (e *Engine) BaseTarget() int64 {
	return e.opts.BaseTarget
}

// Input is one closing submission plus the externally reported totals,
// already fetched by the caller. The engine performs no I/O.
type Input struct {
	Counts            []domain.CountedUnit
	Surpluses         map[string]int64
	OperatingExpenses int64
	Loans             int64
	Registered        map[string]int64
	Reported          map[string]int64
}

// ReconcileClosing runs the whole pipeline for one drawer: aggregate,
// carve out the base, classify it, derive the deposit, and validate the
// payment channels. Shortage, surplus, material differences and a negative
// deposit are all data in the result, never errors.
func (e *Engine) ReconcileClosing(input Input) (domain.ClosingResult, error) {
	snapshot, err := e.catalog.NewSnapshot(input.Counts)
	if err != nil {
		return domain.ClosingResult{}, err
	}

	adjustments := Adjustments{
		SurplusesByChannel: input.Surpluses,
		OperatingExpenses:  input.OperatingExpenses,
		Loans:              input.Loans,
	}
	if err := adjustments.validate(); err != nil {
		return domain.ClosingResult{}, err
	}
	for channel, amount := range input.Registered {
		if channel == "" {
			return domain.ClosingResult{}, fmt.Errorf("%w: registered total with empty channel", ErrInvalidInput)
		}
		if amount < 0 {
			return domain.ClosingResult{}, fmt.Errorf("%w: negative registered total %d for channel %q", ErrInvalidInput, amount, channel)
		}
	}

	totals := e.catalog.Aggregate(snapshot)

	partition, err := solvePartition(e.catalog, snapshot, e.opts.BaseTarget, e.opts.TiePolicy)
	if err != nil {
		return domain.ClosingResult{}, err
	}

	base := classifyBase(partition.AchievedSum, e.opts.BaseTarget)
	deposit, negative := computeDeposit(totals.Grand, partition.AchievedSum, adjustments, e.opts.AdjustmentPolicy)
	verdict := validateChannels(input.Registered, input.Reported, e.opts.MaterialityThreshold, base)

	return domain.ClosingResult{
		Totals:          totals,
		Partition:       partition,
		BaseStatus:      base,
		DepositAmount:   deposit,
		NegativeDeposit: negative,
		CashSale:        totals.Grand - adjustments.cashSurplus() - partition.AchievedSum,
		Adjustments:     adjustments.summary(),
		Verdict:         verdict,
	}, nil
}
