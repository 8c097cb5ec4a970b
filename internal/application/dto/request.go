// Package dto contains data transfer objects for application layer use cases.
package dto

// ValidateRequest encapsulates the inputs of a validate call.
type ValidateRequest struct {
	// Directory holds the XML definition files.
	Directory string
	Metadata  RequestMetadata
}

// ExportRequest selects which stored definitions to materialize.
type ExportRequest struct {
	// IDs restricts the export; empty exports everything.
	IDs     []string
	Filters FilterOptions
	// TargetDir receives the files; empty creates a temp directory.
	TargetDir string
}

// ListRequest selects which imported definitions to list.
type ListRequest struct {
	Filters FilterOptions
}

// FilterOptions defines filters for definition selection.
type FilterOptions struct {
	FilterExpression string
	IncludeIDs       []string
	IncludeTypes     []string
	ExcludeAbstract  bool
}

// IsEmpty returns true when no filter is set.
func (f FilterOptions) IsEmpty() bool {
	return f.FilterExpression == "" && len(f.IncludeIDs) == 0 && len(f.IncludeTypes) == 0 && !f.ExcludeAbstract
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// RequestID uniquely identifies this request
	RequestID string
}
