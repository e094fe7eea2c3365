// Package sync maintains the live mirror between one company's remote data
// document and the local state store, and carries local mutations back.
package sync

import (
	"context"
	gosync "sync"

	"go.uber.org/zap"

	"github.com/quillbooks/backend/internal/domain/company"
	"github.com/quillbooks/backend/internal/domain/errors"
	"github.com/quillbooks/backend/internal/state"
)

// Connectivity reports whether the remote transport is currently reachable.
// An offline transport turns subscription errors into expected noise.
type Connectivity interface {
	Online() bool
}

// Engine mirrors one remote company data document into the local state
// store. At most one subscription is active; re-subscribing for a different
// company tears the previous one down first.
type Engine struct {
	repo   company.Repository
	store  *state.Store
	conn   Connectivity
	logger *zap.Logger

	mu        gosync.Mutex
	session   uint64 // bumped on every subscribe/unsubscribe; stale callbacks carry an older value
	cancel    company.CancelFunc
	companyID string
}

// NewEngine creates a new sync engine
func NewEngine(repo company.Repository, store *state.Store, conn Connectivity, logger *zap.Logger) *Engine {
	return &Engine{
		repo:   repo,
		store:  store,
		conn:   conn,
		logger: logger,
	}
}

// Active returns the company id of the current subscription, or "".
func (e *Engine) Active() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.companyID
}

// Subscribe opens a live subscription to the company's data document. Any
// existing subscription is torn down first. Every notification is normalized
// and replaces the store's data wholesale; a notification delivered after a
// later subscribe or unsubscribe is dropped by its session token.
func (e *Engine) Subscribe(ctx context.Context, companyID string) error {
	e.mu.Lock()
	e.teardownLocked()
	e.session++
	token := e.session
	e.companyID = companyID
	e.mu.Unlock()

	onChange := func(data company.Data) {
		if !e.sessionCurrent(token) {
			e.logger.Debug("dropping stale data notification", zap.String("companyId", companyID))
			return
		}
		e.store.SetData(company.Normalize(data))
	}
	onError := func(err error) {
		if !e.sessionCurrent(token) {
			return
		}
		if !e.conn.Online() {
			// Subscription loss while offline is expected; keep the
			// cached data and stay quiet.
			e.logger.Debug("subscription error while offline", zap.Error(err))
			return
		}
		e.logger.Warn("data subscription error", zap.String("companyId", companyID), zap.Error(err))
		e.store.SetErr(err)
	}

	cancel, err := e.repo.WatchData(ctx, companyID, onChange, onError)
	if err != nil {
		e.mu.Lock()
		if e.session == token {
			e.companyID = ""
		}
		e.mu.Unlock()
		wrapped := errors.NewTransportError("failed to subscribe to company data", err)
		e.store.SetErr(wrapped)
		return wrapped
	}

	e.mu.Lock()
	if e.session != token {
		// Unsubscribed (or re-subscribed) while the watch was being set
		// up; the new owner wins.
		e.mu.Unlock()
		cancel()
		return nil
	}
	e.cancel = cancel
	e.mu.Unlock()
	return nil
}

// Unsubscribe cancels the active subscription. Idempotent.
func (e *Engine) Unsubscribe() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.teardownLocked()
	e.session++
	e.companyID = ""
}

// FetchOnce reads and normalizes the company's data document without
// subscribing. Used to validate existence during company selection.
func (e *Engine) FetchOnce(ctx context.Context, companyID string) (company.Data, error) {
	data, err := e.repo.GetData(ctx, companyID)
	if err != nil {
		return company.Data{}, err
	}
	data.CompanyID = companyID
	return company.Normalize(data), nil
}

// Write merges a partial update over the current remote document and
// persists the result. An empty companyID resolves to the active
// subscription; with neither, the write fails with NO_ACTIVE_COMPANY. The
// merged document is normalized before persisting, so the
// default-Uncategorized invariant survives every write.
func (e *Engine) Write(ctx context.Context, companyID string, patch company.DataPatch) error {
	if companyID == "" {
		companyID = e.Active()
	}
	if companyID == "" {
		err := errors.NewNoActiveCompanyError("no company selected for data update")
		e.store.SetErr(err)
		return err
	}

	e.store.SetLoading(true)
	defer e.store.SetLoading(false)

	current, err := e.repo.GetData(ctx, companyID)
	if err != nil {
		e.store.SetErr(err)
		return err
	}

	merged := company.Normalize(company.Merge(current, patch))
	merged.CompanyID = companyID

	if err := e.repo.PutData(ctx, merged); err != nil {
		e.store.SetErr(err)
		return err
	}

	e.store.SetErr(nil)
	return nil
}

func (e *Engine) teardownLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) sessionCurrent(token uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session == token
}
