package values

import "strings"

// DisplayType controls how a field, region or transition is presented.
// Two values carry compile-time meaning: DisplayDelete removes an inherited
// field and DisplaySystem disables an inherited region or transition.
type DisplayType string

const (
	DisplayUnset    DisplayType = ""
	DisplayEditable DisplayType = "editable"
	DisplayReadOnly DisplayType = "readonly"
	DisplayHidden   DisplayType = "hidden"
	DisplaySystem   DisplayType = "system"
	DisplayDelete   DisplayType = "delete"
)

// NewDisplayType normalizes a raw attribute value. Unknown values are kept
// as-is so that consumers with richer vocabularies still see them.
func NewDisplayType(s string) DisplayType {
	return DisplayType(strings.ToLower(strings.TrimSpace(s)))
}

// String returns the string representation
func (d DisplayType) String() string {
	return string(d)
}

// IsSet returns true if a display type was declared.
func (d DisplayType) IsSet() bool {
	return d != DisplayUnset
}

// IsDeleted reports whether the element should be dropped after merging.
func (d DisplayType) IsDeleted() bool {
	return d == DisplayDelete
}

// IsDisabled reports whether a region or transition is switched off.
func (d DisplayType) IsDisabled() bool {
	return d == DisplaySystem
}
