package fill

import (
	"strings"
	"unicode"
)

// Match strategies, in the order they are tried.
const (
	matchExact   = "exact"
	matchAlias   = "alias"
	matchVariant = "variant"
	matchFuzzy   = "fuzzy"
)

// resolveField locates the document field a descriptor targets. The
// declared name is tried verbatim first, then through the document
// alias table, then as spelling variants, and finally by substring
// containment against every field in the document. Returns the field,
// the strategy that found it, and whether anything matched.
func resolveField(idx *fieldIndex, aliases aliasTable, declared, item string) (*Field, string, bool) {
	if f, ok := idx.lookup(declared); ok {
		return f, matchExact, true
	}

	if name, ok := aliases.lookup(declared, item); ok {
		if f, found := idx.lookup(name); found {
			return f, matchAlias, true
		}
	}

	for _, v := range nameVariants(declared) {
		if f, ok := idx.lookup(v); ok {
			return f, matchVariant, true
		}
		if f, ok := idx.lookupFold(v); ok {
			return f, matchVariant, true
		}
	}

	if f, ok := idx.fuzzyLookup(declared); ok {
		return f, matchFuzzy, true
	}

	return nil, "", false
}

// nameVariants returns alternate spellings of a declared field name:
// dots swapped for underscores, punctuation stripped, and both case
// foldings. Authors copy names out of PDF inspectors that disagree on
// separators, so all of these show up in practice.
func nameVariants(name string) []string {
	variants := []string{
		strings.ReplaceAll(name, ".", "_"),
		stripPunctuation(name),
		strings.ToLower(name),
		strings.ToUpper(name),
	}

	seen := make(map[string]bool, len(variants)+1)
	seen[name] = true

	unique := variants[:0]
	for _, v := range variants {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		unique = append(unique, v)
	}
	return unique
}

// normalizeFieldName lowercases a name and drops everything that is not
// a letter or digit. Two names that normalize equal are treated as the
// same field.
func normalizeFieldName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// stripPunctuation removes separator characters but keeps case.
func stripPunctuation(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// namesMatch reports whether a document field name and a wanted name
// refer to the same field: substring containment in either direction,
// or equality after normalization.
func namesMatch(fieldName, wanted string) bool {
	fl := strings.ToLower(fieldName)
	wl := strings.ToLower(wanted)
	if strings.Contains(fl, wl) || strings.Contains(wl, fl) {
		return true
	}
	return normalizeFieldName(fieldName) == normalizeFieldName(wanted)
}
