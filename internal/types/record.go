package types

import "time"

// RemoteRecord is one record as exposed by the remote tracker.
type RemoteRecord struct {
	Origin    string
	Number    int
	NodeID    string
	Title     string
	Body      string
	State     string // "open" or "closed"
	Status    string // remote status value, empty when the record carries none
	Labels    []string
	Assignees []string
	Milestone string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key returns the durable identity of the record.
func (r *RemoteRecord) Key() RecordKey {
	return RecordKey{Origin: r.Origin, Number: r.Number}
}

// IsClosed reports whether the remote record is closed.
func (r *RemoteRecord) IsClosed() bool {
	return r.State == "closed"
}

// RecordPage is one page of a paginated record listing.
type RecordPage struct {
	Records []*RemoteRecord
	// Next is an opaque cursor for the following page; empty on the last page.
	Next string
}

// RecordFields are the writable fields of a remote record.
type RecordFields struct {
	Title  string
	Body   string
	Status string // empty leaves the remote status alone
	Labels []string
	Closed bool
}

// Vocabulary is the set of categorical values a remote origin knows about.
type Vocabulary struct {
	Statuses []string
	Labels   []string
}
