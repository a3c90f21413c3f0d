package panel

import "errors"

// ErrRecordNotFound is the sentinel a load callback returns when the record
// does not exist. The dispatcher maps it to a 404 instead of a server error.
var ErrRecordNotFound = errors.New("record not found")

// ValidationError carries a host validation rejection back through save.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// LoadFunc fetches the record backing a panel. It returns any value the
// component layer can resolve fields from: a map, a struct, or an object
// with accessor methods.
type LoadFunc func(recordID string) (any, error)

// SaveFunc persists sanitized form data for a record. The returned value is
// truthy on success; hosts may return an updated record id.
type SaveFunc func(recordID string, data map[string]any) (any, error)

// DeleteFunc removes the record.
type DeleteFunc func(recordID string) (any, error)

// ValidateFunc inspects sanitized form data before save. Returning a
// *ValidationError rejects the submission with a 422.
type ValidateFunc func(recordID string, data map[string]any) error

// SearchResult is one normalized search hit.
type SearchResult struct {
	ID   any    `json:"id"`
	Text string `json:"text"`
}

// SearchFunc answers a search field's lookup. With a non-empty include list
// the call is a hydration: term is empty and only the listed ids are wanted.
type SearchFunc func(term string, include []string) ([]SearchResult, error)

// RawSearchFunc is the legacy search path. Its result is passed back to the
// client unmodified, whatever its shape.
type RawSearchFunc func(term string, include []string) (any, error)

// ActionRequest is the payload handed to an action handler.
type ActionRequest struct {
	RecordID  string
	ActionKey string
	Payload   map[string]any
}

// ActionFunc runs a footer/button/menu/notes action. Returned map entries are
// merged into the success envelope.
type ActionFunc func(req ActionRequest) (map[string]any, error)
