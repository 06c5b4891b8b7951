package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cierrecaja/backend/internal/cache"
	"cierrecaja/backend/internal/closing"
	"cierrecaja/backend/internal/domain"
	"cierrecaja/backend/internal/salesledger"
	"cierrecaja/backend/internal/store"
	"cierrecaja/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo           store.Repository
	engine         *closing.Engine
	ledger         salesledger.Source
	summaryCache   cache.SalesSummaryCache
	summaryTTL     time.Duration
	defaultStoreID string
}

func New(repo store.Repository, engine *closing.Engine, ledger salesledger.Source, summaryCache cache.SalesSummaryCache, summaryTTL time.Duration, defaultStoreID string) *Service {
	if defaultStoreID == "" {
		defaultStoreID = "main-store"
	}
	if summaryCache == nil {
		summaryCache = cache.NoopSalesSummaryCache{}
	}
	if summaryTTL <= 0 {
		summaryTTL = 5 * time.Minute
	}

	return &Service{
		repo:           repo,
		engine:         engine,
		ledger:         ledger,
		summaryCache:   summaryCache,
		summaryTTL:     summaryTTL,
		defaultStoreID: defaultStoreID,
	}
}

// ProcessClosing runs one full daily closing: fetch the day's reported
// sales from the ledger, reconcile the counted drawer against them, and
// persist the outcome. A ledger outage does not abort the closing; the
// result is saved with LedgerError set and no channel validation, so the
// caller can surface the partial state.
func (s *Service) ProcessClosing(ctx context.Context, req domain.ClosingRequest) (domain.Closing, error) {
	if req.StoreID == "" {
		req.StoreID = s.defaultStoreID
	}

	date, err := resolveDate(req.Date)
	if err != nil {
		return domain.Closing{}, fmt.Errorf("%w: %v", closing.ErrInvalidInput, err)
	}

	surpluses, err := aggregateSurpluses(req.Surpluses)
	if err != nil {
		return domain.Closing{}, err
	}

	summary, ledgerErr := s.fetchSalesSummary(ctx, req.StoreID, date)

	input := closing.Input{
		Counts:            req.Counts,
		Surpluses:         surpluses,
		OperatingExpenses: req.OperatingExpenses,
		Loans:             req.Loans,
	}
	// Without ledger data there is nothing to compare the registered
	// totals against; the verdict then reflects the base status alone.
	if summary != nil {
		input.Registered = req.RegisteredTotals
		input.Reported = summary.Totals
	}

	result, err := s.engine.ReconcileClosing(input)
	if err != nil {
		return domain.Closing{}, err
	}

	actor, _ := ActorFromContext(ctx)
	record := domain.Closing{
		ID:          xid.New("closing"),
		StoreID:     req.StoreID,
		Date:        date,
		ProcessedBy: actor.Username,
		Result:      result,
		Ledger:      summary,
		CreatedAt:   time.Now().UTC(),
	}
	if ledgerErr != nil {
		record.LedgerError = ledgerErr.Error()
	}

	saved, err := s.repo.SaveClosing(ctx, record)
	if err != nil {
		return domain.Closing{}, err
	}

	s.logAudit(ctx, req.StoreID, "closing_process", "closing", saved.ID,
		fmt.Sprintf("date=%s,base=%s,deposit=%d,verdict=%s,ledger_ok=%t",
			date, result.BaseStatus.Kind, result.DepositAmount, result.Verdict.Status, ledgerErr == nil))

	return *saved, nil
}

func (s *Service) GetClosing(ctx context.Context, id string) (domain.Closing, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Closing{}, store.ErrInvalidClosing
	}
	found, err := s.repo.GetClosingByID(ctx, id)
	if err != nil {
		return domain.Closing{}, err
	}
	return *found, nil
}

func (s *Service) ListClosings(ctx context.Context, storeID string, limit int) ([]domain.Closing, error) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}
	if limit < 1 {
		limit = 50
	}
	return s.repo.ListClosings(ctx, storeID, limit)
}

// Catalog exposes the configured denominations and targets for clients
// that render the counting form.
func (s *Service) Catalog() domain.CatalogResponse {
	catalog := s.engine.Catalog()
	denominations := catalog.Denominations()

	resp := domain.CatalogResponse{
		BaseTarget:           s.engine.BaseTarget(),
		SmallChangeThreshold: catalog.SmallThreshold(),
		Denominations:        make([]domain.CatalogDenomination, 0, len(denominations)),
	}
	for _, d := range denominations {
		resp.Denominations = append(resp.Denominations, domain.CatalogDenomination{
			FaceValue: d.FaceValue,
			Kind:      string(d.Kind),
			Small:     catalog.IsSmall(d.FaceValue),
		})
	}
	return resp
}

func (s *Service) ListAuditLogs(ctx context.Context, storeID string, date string, limit int) ([]domain.AuditLog, error) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}
	if limit < 1 {
		limit = 100
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		from = time.Now().UTC().Add(-24 * time.Hour)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, store.ErrInvalidClosing
		}
		from = parsed.UTC()
	}
	to := from.Add(24 * time.Hour)

	return s.repo.ListAuditLogs(ctx, storeID, from, to, limit)
}

// fetchSalesSummary goes through the cache first; a cache failure is
// logged and treated as a miss.
func (s *Service) fetchSalesSummary(ctx context.Context, storeID string, date string) (*domain.SalesSummary, error) {
	if s.ledger == nil {
		return nil, errors.New("sales ledger not configured")
	}

	key := fmt.Sprintf("sales-summary:%s:%s", storeID, date)
	if cached, ok, err := s.summaryCache.Get(ctx, key); err != nil {
		log.Printf("[service] WARN: sales summary cache get failed key=%s: %v", key, err)
	} else if ok {
		return cached, nil
	}

	summary, err := s.ledger.SalesSummary(ctx, date)
	if err != nil {
		return nil, err
	}

	if err := s.summaryCache.Set(ctx, key, summary, s.summaryTTL); err != nil {
		log.Printf("[service] WARN: sales summary cache set failed key=%s: %v", key, err)
	}
	return summary, nil
}

// aggregateSurpluses folds the declared surplus list into per-channel
// totals; repeated channels accumulate.
func aggregateSurpluses(declarations []domain.SurplusDeclaration) (map[string]int64, error) {
	if len(declarations) == 0 {
		return nil, nil
	}

	surpluses := make(map[string]int64, len(declarations))
	for _, d := range declarations {
		channel := strings.ToLower(strings.TrimSpace(d.Channel))
		if channel == "" {
			return nil, fmt.Errorf("%w: surplus declaration with empty channel", closing.ErrInvalidInput)
		}
		if d.Amount < 0 {
			return nil, fmt.Errorf("%w: negative surplus %d for channel %q", closing.ErrInvalidInput, d.Amount, channel)
		}
		surpluses[channel] += d.Amount
	}
	return surpluses, nil
}

func resolveDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC().Format("2006-01-02"), nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return "", fmt.Errorf("date must be YYYY-MM-DD, got %q", raw)
	}
	return parsed.Format("2006-01-02"), nil
}

func (s *Service) logAudit(ctx context.Context, storeID string, action string, entityType string, entityID string, detail string) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}

	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		StoreID:       storeID,
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}
