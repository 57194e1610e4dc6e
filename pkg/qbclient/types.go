// qbclient/types.go
package qbclient

// Ref is the QuickBooks reference type: an entity id plus its display
// name as the API last saw it.
type Ref struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

// MetaData carries the server-side timestamps present on every entity.
type MetaData struct {
	CreateTime      string `json:"CreateTime,omitempty"`
	LastUpdatedTime string `json:"LastUpdatedTime,omitempty"`
}

// CompanyInfo is the QuickBooks company record. Only the fields this
// service reads are modeled; unknown fields are ignored on decode.
type CompanyInfo struct {
	ID                   string    `json:"Id,omitempty"`
	SyncToken            string    `json:"SyncToken,omitempty"`
	CompanyName          string    `json:"CompanyName"`
	LegalName            string    `json:"LegalName,omitempty"`
	CompanyStartDate     string    `json:"CompanyStartDate,omitempty"`
	Country              string    `json:"Country,omitempty"`
	FiscalYearStartMonth string    `json:"FiscalYearStartMonth,omitempty"`
	MetaData             *MetaData `json:"MetaData,omitempty"`
}

// SalesItemLineDetail describes one sold item on an invoice line.
type SalesItemLineDetail struct {
	ItemRef   *Ref    `json:"ItemRef,omitempty"`
	Qty       float64 `json:"Qty,omitempty"`
	UnitPrice float64 `json:"UnitPrice,omitempty"`
}

// InvoiceLine is a single line on an invoice.
type InvoiceLine struct {
	ID                  string               `json:"Id,omitempty"`
	LineNum             int                  `json:"LineNum,omitempty"`
	Description         string               `json:"Description,omitempty"`
	Amount              float64              `json:"Amount"`
	DetailType          string               `json:"DetailType"`
	SalesItemLineDetail *SalesItemLineDetail `json:"SalesItemLineDetail,omitempty"`
}

// MemoRef is a customer-visible memo.
type MemoRef struct {
	Value string `json:"value"`
}

// EmailAddress wraps an email address field.
type EmailAddress struct {
	Address string `json:"Address,omitempty"`
}

// Invoice is the QuickBooks invoice resource. Updates require Id and
// the current SyncToken; the API rejects stale tokens, which this
// client relays as-is.
type Invoice struct {
	ID           string        `json:"Id,omitempty"`
	SyncToken    string        `json:"SyncToken,omitempty"`
	DocNumber    string        `json:"DocNumber,omitempty"`
	TxnDate      string        `json:"TxnDate,omitempty"`
	DueDate      string        `json:"DueDate,omitempty"`
	CustomerRef  *Ref          `json:"CustomerRef,omitempty"`
	CurrencyRef  *Ref          `json:"CurrencyRef,omitempty"`
	Line         []InvoiceLine `json:"Line,omitempty"`
	CustomerMemo *MemoRef      `json:"CustomerMemo,omitempty"`
	PrivateNote  string        `json:"PrivateNote,omitempty"`
	BillEmail    *EmailAddress `json:"BillEmail,omitempty"`
	TotalAmt     float64       `json:"TotalAmt,omitempty"`
	Balance      float64       `json:"Balance,omitempty"`
	Sparse       bool          `json:"sparse,omitempty"`
	Status       string        `json:"status,omitempty"` // "Deleted" on delete responses
	Domain       string        `json:"domain,omitempty"`
	MetaData     *MetaData     `json:"MetaData,omitempty"`
}

// Response envelopes used by the v3 API.

type companyInfoResponse struct {
	CompanyInfo *CompanyInfo `json:"CompanyInfo"`
	Time        string       `json:"time,omitempty"`
}

type invoiceResponse struct {
	Invoice *Invoice `json:"Invoice"`
	Time    string   `json:"time,omitempty"`
}

type queryResponse struct {
	QueryResponse struct {
		Invoice       []Invoice `json:"Invoice"`
		StartPosition int       `json:"startPosition,omitempty"`
		MaxResults    int       `json:"maxResults,omitempty"`
	} `json:"QueryResponse"`
	Time string `json:"time,omitempty"`
}
