package filterstore

import "errors"

var (
	ErrNotFound      = errors.New("filterstore: filter not found")
	ErrBadName       = errors.New("filterstore: invalid filter name")
	ErrUnknownFormat = errors.New("filterstore: unknown encoding format")

	// ErrCorrupt marks stored bytes that do not decode to a filter.
	ErrCorrupt      = errors.New("filterstore: stored filter is corrupt")
	ErrBadSignature = errors.New("filterstore: filter signature does not verify")
)
