package domain

import "time"

// Query is a fully described HTTP exchange supplied by the query layer.
// The engine stores queries as evidence; it never performs or interprets them.
type Query struct {
	Request  RequestDescription  `json:"request" yaml:"request"`
	Response ResponseDescription `json:"response" yaml:"response"`

	// Participant identifies the system under test that served the query, if known.
	Participant string `json:"participant_id,omitempty" yaml:"participant_id,omitempty"`

	// QueryType is an optional classification of the operation (e.g. "astm.f3548.v21.uss.getOperationalIntentDetails").
	QueryType string `json:"query_type,omitempty" yaml:"query_type,omitempty"`
}

// RequestDescription captures the outgoing half of a query.
type RequestDescription struct {
	Method      string            `json:"method" yaml:"method"`
	URL         string            `json:"url" yaml:"url"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body        string            `json:"body,omitempty" yaml:"body,omitempty"`
	InitiatedAt time.Time         `json:"initiated_at" yaml:"initiated_at"`
}

// ResponseDescription captures the incoming half of a query.
type ResponseDescription struct {
	Code       int               `json:"code" yaml:"code"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       string            `json:"body,omitempty" yaml:"body,omitempty"`
	JSON       any               `json:"json,omitempty" yaml:"json,omitempty"`
	ReceivedAt time.Time         `json:"received_at" yaml:"received_at"`

	// Failure describes a transport-level failure when no response was received.
	Failure string `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// Timestamp returns the request initiation time, which identifies the query
// within a step and is what failed checks reference in QueryTimestamps.
func (q Query) Timestamp() time.Time {
	return q.Request.InitiatedAt
}
