// qbclient/client.go
package qbclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is the QuickBooks v3 API client. A Client is cheap to copy;
// Bind returns a copy scoped to one company and access token, which is
// how request handlers use it (one bound client per request).
type Client struct {
	baseURL      string
	minorVersion string
	realmID      string
	accessToken  string
	httpClient   *http.Client
}

// NewClient creates an unbound QuickBooks API client.
func NewClient(baseURL, minorVersion string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		minorVersion: minorVersion,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Bind returns a copy of the client scoped to a company and bearer token.
func (c *Client) Bind(realmID, accessToken string) *Client {
	bound := *c
	bound.realmID = realmID
	bound.accessToken = accessToken
	return &bound
}

// endpoint builds /v3/company/<realm>/<path>.
func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s/v3/company/%s/%s", c.baseURL, c.realmID, path)
}

// send makes an authenticated request and decodes the response into
// out. Error responses become *APIError with the remote detail intact.
func (c *Client) send(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	if c.realmID == "" || c.accessToken == "" {
		return fmt.Errorf("qbclient: client is not bound to a company")
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	q := req.URL.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("minorversion", c.minorVersion)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var fault faultResponse
	if err := json.Unmarshal(raw, &fault); err == nil && len(fault.Fault.Error) > 0 {
		fe := fault.Fault.Error[0]
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       fe.Code,
			Message:    fe.Message,
			Detail:     fe.Detail,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(raw),
	}
}

// GetCompanyInfo fetches the company record for the bound realm.
func (c *Client) GetCompanyInfo(ctx context.Context) (*CompanyInfo, error) {
	var out companyInfoResponse
	if err := c.send(ctx, http.MethodGet, c.endpoint("companyinfo/"+c.realmID), nil, nil, &out); err != nil {
		return nil, err
	}
	if out.CompanyInfo == nil {
		return nil, fmt.Errorf("empty company info response")
	}
	return out.CompanyInfo, nil
}

// GetInvoice reads a single invoice by id.
func (c *Client) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	var out invoiceResponse
	if err := c.send(ctx, http.MethodGet, c.endpoint("invoice/"+url.PathEscape(id)), nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Invoice == nil {
		return nil, fmt.Errorf("empty invoice response")
	}
	return out.Invoice, nil
}

// QueryInvoices runs an invoice query. The criteria is a free-form
// "Key = Value" filter; empty criteria selects all invoices.
func (c *Client) QueryInvoices(ctx context.Context, criteria string) ([]Invoice, error) {
	q := url.Values{}
	q.Set("query", buildInvoiceQuery(criteria))

	var out queryResponse
	if err := c.send(ctx, http.MethodGet, c.endpoint("query"), q, nil, &out); err != nil {
		return nil, err
	}
	if out.QueryResponse.Invoice == nil {
		return []Invoice{}, nil
	}
	return out.QueryResponse.Invoice, nil
}

// CreateInvoice creates an invoice and returns the stored entity.
func (c *Client) CreateInvoice(ctx context.Context, inv *Invoice) (*Invoice, error) {
	var out invoiceResponse
	if err := c.send(ctx, http.MethodPost, c.endpoint("invoice"), nil, inv, &out); err != nil {
		return nil, err
	}
	if out.Invoice == nil {
		return nil, fmt.Errorf("empty invoice response")
	}
	return out.Invoice, nil
}

// UpdateInvoice performs a full update. The API requires Id and the
// current SyncToken; a missing or stale token is rejected remotely and
// the rejection is returned as-is.
func (c *Client) UpdateInvoice(ctx context.Context, inv *Invoice) (*Invoice, error) {
	var out invoiceResponse
	if err := c.send(ctx, http.MethodPost, c.endpoint("invoice"), nil, inv, &out); err != nil {
		return nil, err
	}
	if out.Invoice == nil {
		return nil, fmt.Errorf("empty invoice response")
	}
	return out.Invoice, nil
}

// DeleteInvoice deletes an invoice by id. The delete operation needs
// the current SyncToken, so the invoice is read first.
func (c *Client) DeleteInvoice(ctx context.Context, id string) (*Invoice, error) {
	inv, err := c.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("operation", "delete")

	payload := &Invoice{ID: inv.ID, SyncToken: inv.SyncToken}

	var out invoiceResponse
	if err := c.send(ctx, http.MethodPost, c.endpoint("invoice"), q, payload, &out); err != nil {
		return nil, err
	}
	if out.Invoice == nil {
		return nil, fmt.Errorf("empty invoice response")
	}
	return out.Invoice, nil
}

// buildInvoiceQuery turns a "Key = Value" criteria into a QBO query.
// Values are single-quoted with embedded quotes escaped; criteria that
// already carries its own quoting is passed through untouched.
func buildInvoiceQuery(criteria string) string {
	criteria = strings.TrimSpace(criteria)
	if criteria == "" {
		return "SELECT * FROM Invoice"
	}

	if key, value, ok := strings.Cut(criteria, "="); ok {
		value = strings.TrimSpace(value)
		if !strings.HasPrefix(value, "'") {
			value = "'" + strings.ReplaceAll(value, "'", "\\'") + "'"
		}
		return fmt.Sprintf("SELECT * FROM Invoice WHERE %s = %s", strings.TrimSpace(key), value)
	}

	return "SELECT * FROM Invoice WHERE " + criteria
}
