// Package salesledger talks to the external accounting API that holds the
// store's invoices. The closing flow only needs one thing from it: the
// per-channel sales totals for a single date, with voided invoices
// filtered out.
package salesledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cierrecaja/backend/internal/domain"
	"cierrecaja/backend/internal/money"
)

var (
	ErrUnavailable = errors.New("sales ledger unavailable")
	ErrAuth        = errors.New("sales ledger rejected credentials")
)

// Source is what the closing service depends on. The HTTP client below is
// the production implementation; tests supply stubs.
type Source interface {
	SalesSummary(ctx context.Context, date string) (*domain.SalesSummary, error)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
}

func NewClient(username string, password string, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
	}
}

// Payment is one payment line on an invoice. Amounts arrive as JSON
// numbers or quoted strings depending on the upstream account settings.
type Payment struct {
	Amount flexAmount `json:"amount"`
	Method string     `json:"paymentMethod"`
	Status string     `json:"status"`
}

type Invoice struct {
	ID           json.Number `json:"id"`
	Date         string      `json:"date"`
	Status       string      `json:"status"`
	Total        flexAmount  `json:"total"`
	TotalPaid    flexAmount  `json:"totalPaid"`
	VoidedAt     string      `json:"voided_at"`
	VoidedBy     string      `json:"voided_by"`
	CancelledAt  string      `json:"cancelled_at"`
	CancelledBy  string      `json:"cancelled_by"`
	DeletedAt    string      `json:"deleted_at"`
	Observations string      `json:"observations"`
	Anotation    string      `json:"anotation"`
	Notes        string      `json:"notes"`
	Terms        string      `json:"termsConditions"`
	Payments     []Payment   `json:"payments"`
}

// flexAmount tolerates "12500", 12500, 12500.0 and "12,500" on the wire
// and lands on whole pesos.
type flexAmount int64

func (a *flexAmount) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*a = 0
		return nil
	}
	*a = flexAmount(money.ParseAmount(raw))
	return nil
}

// pageSize is the upstream API's maximum page length.
const pageSize = 30

// InvoicesByDate fetches every invoice the ledger has for one date,
// walking the paginated endpoint until a short page arrives.
func (c *Client) InvoicesByDate(ctx context.Context, date string) ([]Invoice, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}

	invoices := make([]Invoice, 0, pageSize)
	for start := 0; ; start += pageSize {
		page, err := c.invoicesPage(ctx, date, start)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, page...)
		if len(page) < pageSize {
			return invoices, nil
		}
	}
}

func (c *Client) invoicesPage(ctx context.Context, date string, start int) ([]Invoice, error) {
	query := url.Values{
		"date":  {date},
		"start": {strconv.Itoa(start)},
		"limit": {strconv.Itoa(pageSize)},
	}
	endpoint := fmt.Sprintf("%s/invoices?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: invoices endpoint not found", ErrUnavailable)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: upstream status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var page []Invoice
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: malformed invoice payload: %v", ErrUnavailable, err)
	}
	return page, nil
}

// SalesSummary fetches and aggregates one day of sales: voided invoices
// are dropped, payments are summed into normalized channels.
func (c *Client) SalesSummary(ctx context.Context, date string) (*domain.SalesSummary, error) {
	invoices, err := c.InvoicesByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	summary := Summarize(date, invoices)
	log.Printf("[salesledger] date=%s invoices=%d voided=%d total=%d", date, summary.InvoiceCount, summary.VoidedCount, summary.TotalSale)
	return summary, nil
}

// Summarize aggregates raw invoices into per-channel totals. Exposed so
// tests and offline tooling can reuse the exact aggregation.
func Summarize(date string, invoices []Invoice) *domain.SalesSummary {
	summary := &domain.SalesSummary{
		Date: date,
		Totals: map[string]int64{
			"cash":        0,
			"debit-card":  0,
			"credit-card": 0,
			"transfer":    0,
		},
	}

	for _, inv := range invoices {
		if isVoided(inv) {
			summary.VoidedCount++
			summary.VoidedTotal += int64(inv.Total)
			continue
		}
		summary.InvoiceCount++
		for _, p := range inv.Payments {
			channel := NormalizeChannel(p.Method)
			summary.Totals[channel] += int64(p.Amount)
			summary.TotalSale += int64(p.Amount)
		}
	}
	return summary
}

// NormalizeChannel maps the free-form payment method names the ledger
// emits (Spanish and English variants) onto the closing channel set.
func NormalizeChannel(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case lower == "":
		return "other"
	case strings.Contains(lower, "credit") || strings.Contains(lower, "crédito") || strings.Contains(lower, "credito"):
		return "credit-card"
	case strings.Contains(lower, "debit") || strings.Contains(lower, "débito") || strings.Contains(lower, "debito"):
		return "debit-card"
	case strings.Contains(lower, "transfer") || strings.Contains(lower, "transferencia"):
		return "transfer"
	case strings.Contains(lower, "cash") || strings.Contains(lower, "efectivo"):
		return "cash"
	}
	return "other"
}

var voidKeywords = []string{"anulad", "anul", "void", "cancel", "revers"}

// isVoided applies the layered heuristics the ledger requires: an explicit
// void status, any cancellation timestamp, a refunded payment, or a void
// keyword in the annotation fields. The checks run from most to least
// reliable.
func isVoided(inv Invoice) bool {
	switch strings.ToLower(strings.TrimSpace(inv.Status)) {
	case "void", "cancelled", "annulled", "reversed":
		return true
	}

	if inv.VoidedAt != "" || inv.VoidedBy != "" || inv.CancelledAt != "" || inv.CancelledBy != "" || inv.DeletedAt != "" {
		return true
	}

	for _, p := range inv.Payments {
		switch strings.ToLower(strings.TrimSpace(p.Status)) {
		case "refunded", "cancelled", "void", "reversed":
			return true
		}
	}

	for _, text := range []string{inv.Observations, inv.Anotation, inv.Notes, inv.Terms} {
		lower := strings.ToLower(text)
		for _, keyword := range voidKeywords {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}
