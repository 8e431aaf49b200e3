package normalize

import "strings"

// AliasLookup resolves a brand name to its generic, case-insensitively. It
// is satisfied by refdata.Data.ResolveGeneric — normalize stays
// dependency-free by taking the lookup as a function rather than importing
// refdata directly.
type AliasLookup func(brand string) (generic string, ok bool)

// ResolveGeneric implements spec.md §4.2's generic-name resolution: prefer
// the medication record's explicit generic field; fall back to an alias
// table lookup by brand name; otherwise return empty, which callers must
// treat as "cannot group with other medications".
func ResolveGeneric(explicitGeneric, brandName string, lookup AliasLookup) string {
	if g := strings.TrimSpace(explicitGeneric); g != "" {
		return strings.ToLower(g)
	}
	if lookup == nil {
		return ""
	}
	if g, ok := lookup(brandName); ok {
		return strings.ToLower(g)
	}
	return ""
}
