package qbclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newStub(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "75").Bind("4620816365", "access-token"), srv
}

func TestBuildInvoiceQuery(t *testing.T) {
	cases := []struct {
		name     string
		criteria string
		want     string
	}{
		{"empty", "", "SELECT * FROM Invoice"},
		{"key value", "DocNumber = 1001", "SELECT * FROM Invoice WHERE DocNumber = '1001'"},
		{"already quoted", "DocNumber = '1001'", "SELECT * FROM Invoice WHERE DocNumber = '1001'"},
		{"escapes quotes", "CustomerRef = O'Brien", `SELECT * FROM Invoice WHERE CustomerRef = 'O\'Brien'`},
		{"raw clause", "Balance > '0'", "SELECT * FROM Invoice WHERE Balance > '0'"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, buildInvoiceQuery(tc.criteria))
		})
	}
}

func TestGetCompanyInfo(t *testing.T) {
	client, _ := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/company/4620816365/companyinfo/4620816365", r.URL.Path)
		require.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		require.Equal(t, "75", r.URL.Query().Get("minorversion"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"CompanyInfo":{"Id":"1","CompanyName":"Sandbox Company_US_1","Country":"US"},"time":"2024-01-01T00:00:00Z"}`))
	})

	info, err := client.GetCompanyInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Sandbox Company_US_1", info.CompanyName)
}

func TestQueryInvoices(t *testing.T) {
	client, _ := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/company/4620816365/query", r.URL.Path)
		require.Equal(t, "SELECT * FROM Invoice WHERE DocNumber = '1001'", r.URL.Query().Get("query"))

		w.Write([]byte(`{"QueryResponse":{"Invoice":[{"Id":"42","DocNumber":"1001","TotalAmt":150.0}],"startPosition":1,"maxResults":1}}`))
	})

	invoices, err := client.QueryInvoices(context.Background(), "DocNumber = 1001")
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	require.Equal(t, "42", invoices[0].ID)
}

func TestQueryInvoices_EmptyResult(t *testing.T) {
	client, _ := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"QueryResponse":{}}`))
	})

	invoices, err := client.QueryInvoices(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, invoices)
}

func TestFaultDecoding(t *testing.T) {
	client, _ := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"Fault":{"Error":[{"Message":"Stale Object Error","Detail":"You and root were working on this at the same time","code":"5010"}],"type":"ValidationFault"}}`))
	})

	_, err := client.UpdateInvoice(context.Background(), &Invoice{ID: "42"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "5010", apiErr.Code)
	require.Equal(t, "Stale Object Error", apiErr.Message)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Contains(t, apiErr.Error(), "Stale Object Error")
}

func TestFaultDecoding_NonFaultBody(t *testing.T) {
	client, _ := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := client.GetInvoice(context.Background(), "42")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Empty(t, apiErr.Code)
}

func TestDeleteInvoice_ReadsSyncTokenFirst(t *testing.T) {
	var deleteBody Invoice
	client, _ := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.Write([]byte(`{"Invoice":{"Id":"129","SyncToken":"3","DocNumber":"1042"}}`))
		case r.Method == http.MethodPost && r.URL.Query().Get("operation") == "delete":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&deleteBody))
			w.Write([]byte(`{"Invoice":{"Id":"129","status":"Deleted","domain":"QBO"}}`))
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL)
		}
	})

	result, err := client.DeleteInvoice(context.Background(), "129")
	require.NoError(t, err)
	require.Equal(t, "Deleted", result.Status)
	require.Equal(t, "129", deleteBody.ID)
	require.Equal(t, "3", deleteBody.SyncToken, "delete must carry the current SyncToken")
}

func TestUnboundClient(t *testing.T) {
	client := NewClient("http://example.invalid", "75")
	_, err := client.GetInvoice(context.Background(), "1")
	require.Error(t, err)
}
