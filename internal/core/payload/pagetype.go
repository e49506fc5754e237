package payload

import "strings"

// PageType selects which field set and repeater groups are semantically valid.
type PageType string

const (
	PageLeakRepair PageType = "Leak Repair"
	PageMains      PageType = "Mains"
	PageRetirement PageType = "Retirement"
	PageServices   PageType = "Services"
)

// DefaultPageType is used when a stored record carries an unknown page type.
const DefaultPageType = PageLeakRepair

// AllPageTypes lists the fixed enumeration of record types.
func AllPageTypes() []PageType {
	return []PageType{PageLeakRepair, PageMains, PageRetirement, PageServices}
}

// ParsePageType matches a raw string against the enumeration after key
// normalization, ignoring case. ok is false for anything outside the four
// record types; the default is returned so callers always hold a valid type.
func ParsePageType(s string) (PageType, bool) {
	k := Key(s)
	for _, pt := range AllPageTypes() {
		if strings.EqualFold(k, string(pt)) {
			return pt, true
		}
	}
	return DefaultPageType, false
}
