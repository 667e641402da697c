// Package domain defines the client-side inventory record graph: global
// identifiers, the closed set of record variants, container/location
// structure, editable-field tracking, and the error taxonomy shared by the
// stores in internal/core.
package domain

import (
	"fmt"
	"strconv"
	"unicode"
)

// GlobalID is the stable, type-prefixed identifier of an inventory record,
// e.g. "IC12" for container #12 or "SS7" for sub-sample #7. It is unique
// across all record types and is the primary key for identity and for
// cross-references (parent/child, basket membership).
type GlobalID string

// Known GlobalID prefixes.
const (
	PrefixContainer = "IC"
	PrefixSample    = "SA"
	PrefixSubSample = "SS"
	PrefixTemplate  = "IT"
	PrefixBench     = "BE"
	PrefixBasket    = "BA"
)

var prefixTypes = map[string]RecordType{
	PrefixContainer: RecordTypeContainer,
	PrefixSample:    RecordTypeSample,
	PrefixSubSample: RecordTypeSubSample,
	PrefixTemplate:  RecordTypeTemplate,
	PrefixBench:     RecordTypeContainer,
	PrefixBasket:    RecordTypeBasket,
}

// ParseGlobalID validates s as a two-letter prefix followed by a positive
// numeric sequence and returns it as a GlobalID.
func ParseGlobalID(s string) (GlobalID, error) {
	if len(s) < 3 {
		return "", &ParseError{Field: "globalId", Got: s, Reason: "too short"}
	}
	prefix := s[:2]
	if _, ok := prefixTypes[prefix]; !ok {
		return "", &ParseError{Field: "globalId", Got: s, Reason: "unknown prefix " + strconv.Quote(prefix)}
	}
	for _, r := range s[2:] {
		if !unicode.IsDigit(r) {
			return "", &ParseError{Field: "globalId", Got: s, Reason: "non-numeric sequence"}
		}
	}
	n, err := strconv.ParseInt(s[2:], 10, 64)
	if err != nil || n <= 0 {
		return "", &ParseError{Field: "globalId", Got: s, Reason: "invalid sequence"}
	}
	return GlobalID(s), nil
}

// MakeGlobalID formats a prefix and sequence number as a GlobalID.
func MakeGlobalID(prefix string, sequence int64) GlobalID {
	return GlobalID(fmt.Sprintf("%s%d", prefix, sequence))
}

// Prefix returns the two-letter type prefix.
func (id GlobalID) Prefix() string {
	if len(id) < 2 {
		return ""
	}
	return string(id[:2])
}

// Sequence returns the numeric part of the identifier, or 0 when malformed.
func (id GlobalID) Sequence() int64 {
	if len(id) < 3 {
		return 0
	}
	n, err := strconv.ParseInt(string(id[2:]), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// RecordType maps the prefix to the record variant it identifies. Bench
// identifiers map to the container variant: a bench behaves as the root
// container of a user's workspace.
func (id GlobalID) RecordType() (RecordType, bool) {
	t, ok := prefixTypes[id.Prefix()]
	return t, ok
}

// IsBench reports whether the identifier names a bench record.
func (id GlobalID) IsBench() bool {
	return id.Prefix() == PrefixBench
}
