package legacy

import "errors"

var (
	// ErrMalformedDocument is returned when a document does not have a header
	// delimited by two delimiter lines.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrInvalidMetadata is returned when the header of a document, or a
	// settings file, cannot be parsed as structured data of the expected shape.
	ErrInvalidMetadata = errors.New("invalid metadata")
)
