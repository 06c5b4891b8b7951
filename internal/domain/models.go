package domain

import "time"

// Amounts are whole Colombian pesos throughout; see internal/money.

type CountedUnit struct {
	FaceValue int64 `json:"face_value"`
	Quantity  int   `json:"quantity"`
}

type SurplusDeclaration struct {
	Channel string `json:"channel"`
	Amount  int64  `json:"amount"`
}

type ClosingRequest struct {
	StoreID           string               `json:"store_id"`
	Date              string               `json:"date"`
	Counts            []CountedUnit        `json:"counts"`
	Surpluses         []SurplusDeclaration `json:"surpluses,omitempty"`
	OperatingExpenses int64                `json:"operating_expenses"`
	ExpensesNote      string               `json:"expenses_note,omitempty"`
	Loans             int64                `json:"loans"`
	LoansNote         string               `json:"loans_note,omitempty"`
	// RegisteredTotals are the per-channel amounts the cashier tallied by
	// hand for the day, keyed by channel name ("cash", "transfer", ...).
	RegisteredTotals map[string]int64 `json:"registered_totals"`
}

type BaseStatusKind string

const (
	BaseExact    BaseStatusKind = "exacta"
	BaseShortage BaseStatusKind = "faltante"
	BaseSurplus  BaseStatusKind = "sobrante"
)

type BaseStatus struct {
	Kind BaseStatusKind `json:"kind"`
	// Amount is the shortage or surplus relative to the target; zero when exact.
	Amount  int64  `json:"amount"`
	Message string `json:"message"`
}

type CashTotals struct {
	Coins int64 `json:"coins"`
	Bills int64 `json:"bills"`
	Grand int64 `json:"grand"`
}

type Partition struct {
	AchievedSum int64           `json:"achieved_sum"`
	Exact       bool            `json:"exact"`
	UnitsUsed   map[int64]int   `json:"units_used"`
	Remainder   map[int64]int   `json:"remainder"`
}

type ChannelDifference struct {
	Reported   int64 `json:"reported"`
	Registered int64 `json:"registered"`
	Difference int64 `json:"difference"`
	IsMaterial bool  `json:"is_material"`
}

type VerdictStatus string

const (
	VerdictOk      VerdictStatus = "ok"
	VerdictWarning VerdictStatus = "warning"
)

type ValidationVerdict struct {
	Status     VerdictStatus                `json:"status"`
	PerChannel map[string]ChannelDifference `json:"per_channel"`
	Message    string                       `json:"message"`
}

type AdjustmentSummary struct {
	SurplusesByChannel map[string]int64 `json:"surpluses_by_channel"`
	TotalSurplus       int64            `json:"total_surplus"`
	OperatingExpenses  int64            `json:"operating_expenses"`
	Loans              int64            `json:"loans"`
}

// ClosingResult is the full outcome of one daily closing computation.
type ClosingResult struct {
	Totals          CashTotals        `json:"totals"`
	Partition       Partition         `json:"partition"`
	BaseStatus      BaseStatus        `json:"base_status"`
	DepositAmount   int64             `json:"deposit_amount"`
	NegativeDeposit bool              `json:"negative_deposit"`
	// CashSale is grand − cashSurplus − base: what the ledger should have
	// registered as cash sales for the day.
	CashSale    int64             `json:"cash_sale"`
	Adjustments AdjustmentSummary `json:"adjustments"`
	Verdict     ValidationVerdict `json:"verdict"`
}

// SalesSummary is the externally reported side of the reconciliation,
// fetched from the accounting ledger for one date.
type SalesSummary struct {
	Date         string           `json:"date"`
	Totals       map[string]int64 `json:"totals"`
	TotalSale    int64            `json:"total_sale"`
	InvoiceCount int              `json:"invoice_count"`
	VoidedCount  int              `json:"voided_count"`
	VoidedTotal  int64            `json:"voided_total"`
}

// Closing is the persisted record of one processed closing.
type Closing struct {
	ID          string        `json:"id"`
	StoreID     string        `json:"store_id"`
	Date        string        `json:"date"`
	ProcessedBy string        `json:"processed_by"`
	Result      ClosingResult `json:"result"`
	Ledger      *SalesSummary `json:"ledger,omitempty"`
	LedgerError string        `json:"ledger_error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

type ClosingResponse struct {
	Closing Closing `json:"closing"`
}

type ClosingListResponse struct {
	Closings []Closing `json:"closings"`
}

type CatalogDenomination struct {
	FaceValue int64  `json:"face_value"`
	Kind      string `json:"kind"`
	Small     bool   `json:"small"`
}

type CatalogResponse struct {
	BaseTarget           int64                 `json:"base_target"`
	SmallChangeThreshold int64                 `json:"small_change_threshold"`
	Denominations        []CatalogDenomination `json:"denominations"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type CashierCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CashierUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	StoreID       string    `json:"store_id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}
