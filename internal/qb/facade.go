// qb/facade.go
package qb

import (
	"context"
	"errors"
	"net/http"

	"github.com/eGGnogSC/qbconnect/internal/auth"
	"github.com/eGGnogSC/qbconnect/pkg/qbclient"
)

// ErrNotInitialized is returned when a business operation runs before
// Initialize succeeded. It signals a programming error in the caller,
// not a remote failure.
var ErrNotInitialized = errors.New("quickbooks service is not initialized")

// Facade orchestrates the token lifecycle in front of the QuickBooks
// client: load the stored record, refresh it when expired, persist the
// result, then bind an API client to the fresh credentials. One Facade
// serves one request for one user and is discarded afterwards.
type Facade struct {
	oauth  *auth.Service
	store  auth.TokenStore
	base   *qbclient.Client
	client *qbclient.Client // nil until Initialize succeeds
}

// NewFacade creates an uninitialized facade over the given token store.
func NewFacade(oauth *auth.Service, store auth.TokenStore, base *qbclient.Client) *Facade {
	return &Facade{oauth: oauth, store: store, base: base}
}

// Initialize loads the user's credentials, refreshing and persisting
// them first when expired, and binds the API client. It fails with
// auth.ErrNoToken when the user never connected (or the stored record
// was undecodable) and with *auth.ExchangeError when the refresh was
// rejected.
func (f *Facade) Initialize(ctx context.Context, userID string) error {
	token, err := f.oauth.EnsureFresh(ctx, f.store, userID)
	if err != nil {
		return err
	}

	f.client = f.base.Bind(token.RealmID, token.AccessToken)
	return nil
}

func (f *Facade) ready() error {
	if f.client == nil {
		return ErrNotInitialized
	}
	return nil
}

// CompanyName fetches the company record and returns its display name.
func (f *Facade) CompanyName(ctx context.Context) (string, error) {
	if err := f.ready(); err != nil {
		return "", err
	}
	info, err := f.client.GetCompanyInfo(ctx)
	if err != nil {
		return "", err
	}
	return info.CompanyName, nil
}

// FindInvoice reads a single invoice by id.
func (f *Facade) FindInvoice(ctx context.Context, id string) (*qbclient.Invoice, error) {
	if err := f.ready(); err != nil {
		return nil, err
	}
	return f.client.GetInvoice(ctx, id)
}

// QueryInvoices lists invoices matching the criteria; empty criteria
// lists all.
func (f *Facade) QueryInvoices(ctx context.Context, criteria string) ([]qbclient.Invoice, error) {
	if err := f.ready(); err != nil {
		return nil, err
	}
	return f.client.QueryInvoices(ctx, criteria)
}

// CreateInvoice creates an invoice. No local validation: the remote
// API's verdict is the contract.
func (f *Facade) CreateInvoice(ctx context.Context, inv *qbclient.Invoice) (*qbclient.Invoice, error) {
	if err := f.ready(); err != nil {
		return nil, err
	}
	return f.client.CreateInvoice(ctx, inv)
}

// UpdateInvoice updates an invoice; SyncToken enforcement is remote.
func (f *Facade) UpdateInvoice(ctx context.Context, inv *qbclient.Invoice) (*qbclient.Invoice, error) {
	if err := f.ready(); err != nil {
		return nil, err
	}
	return f.client.UpdateInvoice(ctx, inv)
}

// DeleteInvoice deletes an invoice by id.
func (f *Facade) DeleteInvoice(ctx context.Context, id string) (*qbclient.Invoice, error) {
	if err := f.ready(); err != nil {
		return nil, err
	}
	return f.client.DeleteInvoice(ctx, id)
}

// Factory builds per-request facades, wiring the request-scoped token
// store to the shared OAuth service and API client.
type Factory struct {
	oauth  *auth.Service
	stores auth.StoreFactory
	base   *qbclient.Client
}

// NewFactory creates a facade factory.
func NewFactory(oauth *auth.Service, stores auth.StoreFactory, base *qbclient.Client) *Factory {
	return &Factory{oauth: oauth, stores: stores, base: base}
}

// New returns the facade for one request.
func (fa *Factory) New(w http.ResponseWriter, r *http.Request) *Facade {
	return NewFacade(fa.oauth, fa.stores(w, r), fa.base)
}
