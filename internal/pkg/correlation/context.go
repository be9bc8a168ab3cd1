// Package correlation carries the correlation/causation identifier pair across
// the inbound-command -> handler -> outbound-event chain. The pair is threaded
// explicitly as a value through handler calls and into outbound messages; it is
// never stored in ambient or goroutine-local state.
package correlation

// Context is the correlation/causation identifier pair attached to a single
// unit of message processing.
//
// The correlation identifier is shared by all messages belonging to one
// end-to-end workflow. The causation identifier names the message that
// directly caused the current one. Either may be empty when the upstream
// producer did not supply metadata; processing proceeds regardless.
type Context struct {
	correlationID string
	causationID   string
}

// New creates a correlation context from the raw identifier pair.
// Empty identifiers are permitted.
func New(correlationID, causationID string) Context {
	return Context{
		correlationID: correlationID,
		causationID:   causationID,
	}
}

// FromEnvelope extracts the pair from inbound envelope metadata. The second
// return value reports whether a correlation identifier was present; callers
// log the absence as a condition but continue processing.
func FromEnvelope(correlationID, causationID string) (Context, bool) {
	return New(correlationID, causationID), correlationID != ""
}

// CorrelationID returns the workflow-wide identifier, possibly empty.
func (c Context) CorrelationID() string {
	return c.correlationID
}

// CausationID returns the identifier of the causing message, possibly empty.
func (c Context) CausationID() string {
	return c.causationID
}

// IsZero reports whether neither identifier is set.
func (c Context) IsZero() bool {
	return c.correlationID == "" && c.causationID == ""
}
