package closing

import (
	"errors"
	"reflect"
	"testing"

	"cierrecaja/backend/internal/domain"
)

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.BaseTarget == 0 {
		opts.BaseTarget = 450000
	}
	engine, err := NewEngine(newTestCatalog(t), opts)
	if err != nil {
		t.Fatalf("engine construction failed: %v", err)
	}
	return engine
}

func TestNewEngineRejectsInvalidOptions(t *testing.T) {
	catalog := newTestCatalog(t)

	if _, err := NewEngine(nil, Options{BaseTarget: 450000}); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for nil catalog, got %v", err)
	}
	if _, err := NewEngine(catalog, Options{BaseTarget: 0}); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for zero base target, got %v", err)
	}
	if _, err := NewEngine(catalog, Options{BaseTarget: 450000, MaterialityThreshold: -1}); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for negative materiality, got %v", err)
	}
}

func TestReconcileClosingExactBase(t *testing.T) {
	engine := newTestEngine(t, Options{})

	result, err := engine.ReconcileClosing(Input{
		Counts: []domain.CountedUnit{
			{FaceValue: 100000, Quantity: 4},
			{FaceValue: 50000, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if result.BaseStatus.Kind != domain.BaseExact {
		t.Fatalf("expected exact base, got %s", result.BaseStatus.Kind)
	}
	if result.BaseStatus.Message != "Base completa" {
		t.Fatalf("unexpected base message: %q", result.BaseStatus.Message)
	}
	if result.DepositAmount != 0 {
		t.Fatalf("expected zero deposit, got %d", result.DepositAmount)
	}
}

func TestReconcileClosingShortage(t *testing.T) {
	engine := newTestEngine(t, Options{})

	result, err := engine.ReconcileClosing(Input{
		Counts: []domain.CountedUnit{{FaceValue: 100000, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if result.Partition.AchievedSum != 300000 {
		t.Fatalf("expected achieved sum 300000, got %d", result.Partition.AchievedSum)
	}
	if result.BaseStatus.Kind != domain.BaseShortage || result.BaseStatus.Amount != 150000 {
		t.Fatalf("expected shortage of 150000, got %s(%d)", result.BaseStatus.Kind, result.BaseStatus.Amount)
	}
	if result.BaseStatus.Message != "Falta $150.000 para completar la base de $450.000" {
		t.Fatalf("unexpected shortage message: %q", result.BaseStatus.Message)
	}
}

func TestReconcileClosingSurplusBeyondTarget(t *testing.T) {
	engine := newTestEngine(t, Options{BaseTarget: 30000})

	result, err := engine.ReconcileClosing(Input{
		Counts: []domain.CountedUnit{{FaceValue: 50000, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if result.BaseStatus.Kind != domain.BaseSurplus || result.BaseStatus.Amount != 20000 {
		t.Fatalf("expected surplus of 20000, got %s(%d)", result.BaseStatus.Kind, result.BaseStatus.Amount)
	}
}

func TestReconcileClosingDepositAfterAdjustments(t *testing.T) {
	engine := newTestEngine(t, Options{})

	result, err := engine.ReconcileClosing(Input{
		Counts: []domain.CountedUnit{
			{FaceValue: 50000, Quantity: 30},
			{FaceValue: 20000, Quantity: 2},
			{FaceValue: 1000, Quantity: 1},
			{FaceValue: 200, Quantity: 1},
		},
		Surpluses: map[string]int64{"efectivo": 13500},
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if result.Totals.Grand != 1541200 {
		t.Fatalf("expected grand total 1541200, got %d", result.Totals.Grand)
	}
	if !result.Partition.Exact {
		t.Fatalf("expected exact base, achieved %d", result.Partition.AchievedSum)
	}
	if result.DepositAmount != 1077700 {
		t.Fatalf("expected deposit 1077700, got %d", result.DepositAmount)
	}
	if result.NegativeDeposit {
		t.Fatalf("deposit should not be flagged negative")
	}
	if result.CashSale != 1077700 {
		t.Fatalf("expected cash sale 1077700, got %d", result.CashSale)
	}
}

// deposit + base + surpluses + expenses + loans must recompose the grand
// total under the default deduction policy.
func TestReconcileClosingConservation(t *testing.T) {
	engine := newTestEngine(t, Options{})

	input := Input{
		Counts: []domain.CountedUnit{
			{FaceValue: 200, Quantity: 13},
			{FaceValue: 2000, Quantity: 21},
			{FaceValue: 20000, Quantity: 9},
			{FaceValue: 50000, Quantity: 7},
		},
		Surpluses:         map[string]int64{"efectivo": 4200, "transfer": 9000},
		OperatingExpenses: 15000,
		Loans:             2500,
	}
	result, err := engine.ReconcileClosing(input)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	recomposed := result.DepositAmount + result.Partition.AchievedSum +
		result.Adjustments.TotalSurplus + result.Adjustments.OperatingExpenses + result.Adjustments.Loans
	if recomposed != result.Totals.Grand {
		t.Fatalf("conservation violated: %d != grand %d", recomposed, result.Totals.Grand)
	}
}

func TestReconcileClosingNegativeDepositIsWarningNotError(t *testing.T) {
	engine := newTestEngine(t, Options{})

	result, err := engine.ReconcileClosing(Input{
		Counts:            []domain.CountedUnit{{FaceValue: 100000, Quantity: 4}, {FaceValue: 50000, Quantity: 1}},
		OperatingExpenses: 5000,
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if result.DepositAmount != -5000 {
		t.Fatalf("expected deposit -5000, got %d", result.DepositAmount)
	}
	if !result.NegativeDeposit {
		t.Fatalf("expected negative deposit warning")
	}
}

func TestReconcileClosingAdjustmentAddPolicy(t *testing.T) {
	engine := newTestEngine(t, Options{AdjustmentPolicy: AdjustmentsAdd})

	result, err := engine.ReconcileClosing(Input{
		Counts:            []domain.CountedUnit{{FaceValue: 100000, Quantity: 5}},
		OperatingExpenses: 10000,
		Loans:             5000,
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	// grand 500000, base 450000, expenses and loans added back.
	if result.DepositAmount != 65000 {
		t.Fatalf("expected deposit 65000 under add policy, got %d", result.DepositAmount)
	}
}

func TestReconcileClosingMaterialChannelMismatch(t *testing.T) {
	engine := newTestEngine(t, Options{MaterialityThreshold: 1000})

	result, err := engine.ReconcileClosing(Input{
		Counts:     []domain.CountedUnit{{FaceValue: 100000, Quantity: 4}, {FaceValue: 50000, Quantity: 1}},
		Registered: map[string]int64{"transfer": 0},
		Reported:   map[string]int64{"transfer": 852500},
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if result.Verdict.Status != domain.VerdictWarning {
		t.Fatalf("expected warning verdict, got %s", result.Verdict.Status)
	}
	diff := result.Verdict.PerChannel["transfer"]
	if !diff.IsMaterial || diff.Difference != 852500 {
		t.Fatalf("expected material difference 852500, got %+v", diff)
	}
	if result.Verdict.Message == "" {
		t.Fatalf("warning verdict must carry a message")
	}
}

func TestReconcileClosingCleanVerdict(t *testing.T) {
	engine := newTestEngine(t, Options{MaterialityThreshold: 1000})

	totals := map[string]int64{"cash": 500000, "transfer": 852500, "debit-card": 120000}
	result, err := engine.ReconcileClosing(Input{
		Counts:     []domain.CountedUnit{{FaceValue: 100000, Quantity: 4}, {FaceValue: 50000, Quantity: 1}},
		Registered: totals,
		Reported:   totals,
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if result.Verdict.Status != domain.VerdictOk {
		t.Fatalf("expected ok verdict, got %s: %s", result.Verdict.Status, result.Verdict.Message)
	}
	if result.Verdict.Message != "Cierre validado correctamente" {
		t.Fatalf("unexpected verdict message: %q", result.Verdict.Message)
	}
}

func TestReconcileClosingInexactBaseDowngradesVerdict(t *testing.T) {
	engine := newTestEngine(t, Options{MaterialityThreshold: 1000})

	result, err := engine.ReconcileClosing(Input{
		Counts:     []domain.CountedUnit{{FaceValue: 100000, Quantity: 3}},
		Registered: map[string]int64{"cash": 100},
		Reported:   map[string]int64{"cash": 100},
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if result.Verdict.Status != domain.VerdictWarning {
		t.Fatalf("verdict must be warning when the base is short, got %s", result.Verdict.Status)
	}
}

func TestReconcileClosingMaterialityDefaultsToSmallThreshold(t *testing.T) {
	engine := newTestEngine(t, Options{})

	result, err := engine.ReconcileClosing(Input{
		Counts:     []domain.CountedUnit{{FaceValue: 100000, Quantity: 4}, {FaceValue: 50000, Quantity: 1}},
		Registered: map[string]int64{"transfer": 0},
		Reported:   map[string]int64{"transfer": 10000},
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	// Difference equals the small-change threshold: not material.
	if result.Verdict.PerChannel["transfer"].IsMaterial {
		t.Fatalf("difference equal to threshold must not be material")
	}
	if result.Verdict.Status != domain.VerdictOk {
		t.Fatalf("expected ok verdict, got %s", result.Verdict.Status)
	}
}

func TestReconcileClosingRejectsMalformedInput(t *testing.T) {
	engine := newTestEngine(t, Options{})
	validCounts := []domain.CountedUnit{{FaceValue: 100000, Quantity: 1}}

	cases := []struct {
		name  string
		input Input
	}{
		{"negative quantity", Input{Counts: []domain.CountedUnit{{FaceValue: 1000, Quantity: -2}}}},
		{"unknown denomination", Input{Counts: []domain.CountedUnit{{FaceValue: 750, Quantity: 1}}}},
		{"negative surplus", Input{Counts: validCounts, Surpluses: map[string]int64{"cash": -1}}},
		{"empty surplus channel", Input{Counts: validCounts, Surpluses: map[string]int64{"": 100}}},
		{"negative expenses", Input{Counts: validCounts, OperatingExpenses: -1}},
		{"negative loans", Input{Counts: validCounts, Loans: -1}},
		{"negative registered total", Input{Counts: validCounts, Registered: map[string]int64{"cash": -5}}},
		{"empty registered channel", Input{Counts: validCounts, Registered: map[string]int64{"": 5}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.ReconcileClosing(tc.input)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestReconcileClosingDeterminism(t *testing.T) {
	engine := newTestEngine(t, Options{})
	input := Input{
		Counts: []domain.CountedUnit{
			{FaceValue: 200, Quantity: 40},
			{FaceValue: 2000, Quantity: 16},
			{FaceValue: 10000, Quantity: 7},
			{FaceValue: 50000, Quantity: 12},
		},
		Surpluses:  map[string]int64{"efectivo": 13500},
		Registered: map[string]int64{"cash": 100000, "transfer": 852500},
		Reported:   map[string]int64{"cash": 100000, "transfer": 852000},
	}

	first, err := engine.ReconcileClosing(input)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	second, err := engine.ReconcileClosing(input)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different results")
	}
}
