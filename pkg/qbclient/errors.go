// qbclient/errors.go
package qbclient

import "fmt"

// APIError is an error response from the QuickBooks API, carrying
// whatever detail the remote side provided. It is relayed to callers
// verbatim; nothing in this client retries or rewrites it.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		if e.Detail != "" {
			return fmt.Sprintf("QuickBooks API error (%s): %s: %s", e.Code, e.Message, e.Detail)
		}
		return fmt.Sprintf("QuickBooks API error (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("QuickBooks API returned status %d: %s", e.StatusCode, e.Message)
}

// faultResponse is the QBO error envelope.
type faultResponse struct {
	Fault struct {
		Error []struct {
			Message string `json:"Message"`
			Detail  string `json:"Detail"`
			Code    string `json:"code"`
		} `json:"Error"`
		Type string `json:"type"`
	} `json:"Fault"`
}
