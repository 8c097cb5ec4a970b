package validation

import "slices"

// Report accumulates validation messages for one validate call.
type Report struct {
	messages []Message
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add appends messages to the report.
func (r *Report) Add(msgs ...Message) {
	r.messages = append(r.messages, msgs...)
}

// AddError appends an error-severity message.
func (r *Report) AddError(kind Kind, definitionID string, params ...string) {
	r.Add(NewError(kind, definitionID, params...))
}

// AddWarning appends a warning-severity message.
func (r *Report) AddWarning(kind Kind, definitionID string, params ...string) {
	r.Add(NewWarning(kind, definitionID, params...))
}

// Merge folds another report's messages into this one.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Add(other.messages...)
}

// Messages returns a copy of all messages in insertion order.
func (r *Report) Messages() []Message {
	return slices.Clone(r.messages)
}

// Errors returns the error-severity messages.
func (r *Report) Errors() []Message {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity messages.
func (r *Report) Warnings() []Message {
	return r.filter(SeverityWarning)
}

// ByKind returns the messages produced by a specific check.
func (r *Report) ByKind(kind Kind) []Message {
	var out []Message
	for _, m := range r.messages {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// HasBlockingErrors reports whether an import must be refused.
func (r *Report) HasBlockingErrors() bool {
	return slices.ContainsFunc(r.messages, Message.IsError)
}

// Has reports whether any message of the given kind is present.
func (r *Report) Has(kind Kind) bool {
	return slices.ContainsFunc(r.messages, func(m Message) bool { return m.Kind == kind })
}

// Len returns the number of messages.
func (r *Report) Len() int {
	return len(r.messages)
}

func (r *Report) filter(sev Severity) []Message {
	var out []Message
	for _, m := range r.messages {
		if m.Severity == sev {
			out = append(out, m)
		}
	}
	return out
}
