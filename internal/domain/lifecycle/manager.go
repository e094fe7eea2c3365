// Package lifecycle creates companies, drives company selection, and keeps
// the per-user companies list live.
package lifecycle

import (
	"context"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/quillbooks/backend/internal/domain/company"
	"github.com/quillbooks/backend/internal/domain/errors"
	"github.com/quillbooks/backend/internal/domain/sync"
	"github.com/quillbooks/backend/internal/platform/identity"
	"github.com/quillbooks/backend/internal/state"
)

// Manager owns company selection. Exactly one company may be selected at a
// time; selecting another fully tears down the prior subscription before the
// new one is established.
type Manager struct {
	repo   company.Repository
	engine *sync.Engine
	store  *state.Store
	ids    identity.Provider
	conn   sync.Connectivity
	logger *zap.Logger

	mu              gosync.Mutex
	companiesCancel company.CancelFunc
}

// NewManager creates a new lifecycle manager
func NewManager(repo company.Repository, engine *sync.Engine, store *state.Store, ids identity.Provider, conn sync.Connectivity, logger *zap.Logger) *Manager {
	return &Manager{
		repo:   repo,
		engine: engine,
		store:  store,
		ids:    ids,
		conn:   conn,
		logger: logger,
	}
}

// AddCompany creates a new company with its default dataset and appends it to
// the local companies list. Requires a signed-in user. Returns the new
// company id, derived from the name (slug plus random suffix).
func (m *Manager) AddCompany(ctx context.Context, name string) (string, error) {
	userID, err := m.ids.CurrentUserID(ctx)
	if err != nil {
		m.store.SetErr(err)
		return "", err
	}
	if name == "" {
		err := errors.NewValidationError("company name must not be empty")
		m.store.SetErr(err)
		return "", err
	}

	m.store.SetLoading(true)
	defer m.store.SetLoading(false)

	now := time.Now().UTC()
	c := &company.Company{
		CompanyID:      newCompanyID(name),
		OwnerID:        userID,
		Name:           name,
		CreatedAt:      now,
		LastAccessedAt: now,
		BankAccountIDs: []string{},
	}

	if _, err := m.repo.CreateCompany(ctx, c); err != nil {
		m.store.SetErr(err)
		return "", err
	}
	if err := m.repo.PutData(ctx, company.DefaultData(c.CompanyID)); err != nil {
		m.store.SetErr(err)
		return "", err
	}

	snap := m.store.Snapshot()
	m.store.SetCompanies(append(snap.Companies, *c))
	m.store.SetErr(nil)
	m.logger.Info("company created", zap.String("companyId", c.CompanyID))
	return c.CompanyID, nil
}

// SelectCompany makes the given company the active one. An empty id clears
// the selection: the subscription is cancelled and the data resets to the
// default dataset, without error. Selecting a nonexistent id fails with
// NOT_FOUND and leaves the selection unset.
func (m *Manager) SelectCompany(ctx context.Context, companyID string) error {
	if companyID == "" {
		m.engine.Unsubscribe()
		m.store.SetSelected(nil)
		m.store.SetData(company.DefaultData(""))
		return nil
	}

	m.store.SetLoading(true)
	defer m.store.SetLoading(false)

	// Tear down the previous selection before anything attaches to the new
	// one, so a late notification from the old watch cannot land in the
	// new company's slot.
	m.engine.Unsubscribe()
	m.store.SetSelected(nil)

	c, err := m.repo.GetCompany(ctx, companyID)
	if err != nil {
		m.store.SetErr(err)
		return err
	}
	data, err := m.engine.FetchOnce(ctx, companyID)
	if err != nil {
		m.store.SetErr(err)
		return err
	}

	// Best-effort access-time touch; a failure is not worth failing the
	// selection over.
	if err := m.repo.TouchLastAccessed(ctx, companyID, time.Now().UTC()); err != nil {
		m.logger.Warn("failed to touch lastAccessed", zap.String("companyId", companyID), zap.Error(err))
	}

	m.store.SetSelected(c)
	m.store.SetData(data)
	if err := m.engine.Subscribe(ctx, companyID); err != nil {
		m.store.SetSelected(nil)
		m.store.SetData(company.DefaultData(""))
		return err
	}

	m.store.SetErr(nil)
	return nil
}

// ListCompanies keeps a live subscription to the companies owned by userID,
// updating the local list on every change. On a transport error the
// last-known list survives while offline and clears otherwise.
func (m *Manager) ListCompanies(ctx context.Context, userID string) error {
	m.mu.Lock()
	if m.companiesCancel != nil {
		m.companiesCancel()
		m.companiesCancel = nil
	}
	m.mu.Unlock()

	onChange := func(companies []*company.Company) {
		list := make([]company.Company, 0, len(companies))
		for _, c := range companies {
			list = append(list, *c)
		}
		m.store.SetCompanies(list)
	}
	onError := func(err error) {
		m.store.SetErr(err)
		if m.conn.Online() {
			m.store.SetCompanies(nil)
		} else {
			m.logger.Debug("companies watch error while offline; keeping cached list", zap.Error(err))
		}
	}

	cancel, err := m.repo.WatchCompanies(ctx, userID, onChange, onError)
	if err != nil {
		wrapped := errors.NewTransportError("failed to watch companies", err)
		m.store.SetErr(wrapped)
		return wrapped
	}

	m.mu.Lock()
	m.companiesCancel = cancel
	m.mu.Unlock()
	return nil
}

// UpdateCompanyInfo updates a company's display info and mirrors the change
// into the local list and selection.
func (m *Manager) UpdateCompanyInfo(ctx context.Context, companyID string, req *company.UpdateInfoRequest) error {
	if companyID == "" {
		if sel := m.store.Selected(); sel != nil {
			companyID = sel.CompanyID
		}
	}
	if companyID == "" {
		err := errors.NewNoActiveCompanyError("no company selected for info update")
		m.store.SetErr(err)
		return err
	}

	m.store.SetLoading(true)
	defer m.store.SetLoading(false)

	updated, err := m.repo.UpdateCompanyInfo(ctx, companyID, req)
	if err != nil {
		m.store.SetErr(err)
		return err
	}

	snap := m.store.Snapshot()
	for i := range snap.Companies {
		if snap.Companies[i].CompanyID == companyID {
			snap.Companies[i] = *updated
		}
	}
	m.store.SetCompanies(snap.Companies)
	if sel := m.store.Selected(); sel != nil && sel.CompanyID == companyID {
		m.store.SetSelected(updated)
	}
	m.store.SetErr(nil)
	return nil
}

// UpdateCompanyData writes a partial data update through the sync engine.
// An empty companyID targets the active company.
func (m *Manager) UpdateCompanyData(ctx context.Context, companyID string, patch company.DataPatch) error {
	return m.engine.Write(ctx, companyID, patch)
}

// AddCategoryRule adds a categorization pattern for an account category and
// persists the updated rule set. Fails with DUPLICATE_PATTERN when the exact
// pattern is already present for the category.
func (m *Manager) AddCategoryRule(ctx context.Context, pattern, category string) error {
	rules, err := company.AddPattern(m.store.Data().CategoryRules, pattern, category)
	if err != nil {
		m.store.SetErr(err)
		return err
	}
	return m.engine.Write(ctx, "", company.DataPatch{CategoryRules: rules})
}

// LookupCategory runs the rule matcher against the current snapshot's rules.
func (m *Manager) LookupCategory(description string) (string, bool) {
	return company.MatchCategory(description, m.store.Data().CategoryRules)
}

// SignOut clears the selection, stops the companies watch, and resets local
// state.
func (m *Manager) SignOut() {
	m.mu.Lock()
	if m.companiesCancel != nil {
		m.companiesCancel()
		m.companiesCancel = nil
	}
	m.mu.Unlock()

	m.engine.Unsubscribe()
	m.store.SetSelected(nil)
	m.store.SetData(company.DefaultData(""))
	m.store.SetCompanies(nil)
	m.store.SetErr(nil)
}
