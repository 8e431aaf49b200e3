package refdata

import "errors"

// ErrReferenceDataLoad wraps a failure to read a reference-data file from
// the resources directory (missing file, permission error) — spec.md §4.1
// "missing file ... fail fast at startup".
var ErrReferenceDataLoad = errors.New("refdata: failed to load reference data")

// ErrReferenceDataParse wraps a failure to parse or validate a
// reference-data file's contents (malformed JSON, or a record that fails
// struct validation) — spec.md §4.1 "malformed JSON ... fail fast".
var ErrReferenceDataParse = errors.New("refdata: failed to parse reference data")
