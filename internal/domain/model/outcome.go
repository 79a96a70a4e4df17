package model

// OutcomeStatus classifies the result of one source fetch.
type OutcomeStatus string

const (
	OutcomeFound  OutcomeStatus = "found"  // Source returned a record.
	OutcomeEmpty  OutcomeStatus = "empty"  // Source answered but had no match.
	OutcomeFailed OutcomeStatus = "failed" // Request, decode, or credential failure.
)

// FetchOutcome is the typed result of asking one source about a title.
// Record is non-nil only when Status is OutcomeFound.
type FetchOutcome struct {
	Source   SourceName
	Status   OutcomeStatus
	Record   *PartialGameRecord
	Err      error
	CacheHit bool
}

// Found reports whether the outcome carries data.
func (o FetchOutcome) Found() bool {
	return o.Status == OutcomeFound && o.Record != nil
}
