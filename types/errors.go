package types

import "errors"

var (
	// ErrInvalidUTF8 indicates input that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("input is not valid UTF-8")

	// ErrInvalidJSON indicates input that is not a valid JSON document.
	ErrInvalidJSON = errors.New("invalid JSON")

	// ErrDuplicateKey indicates an object with two members of the same name.
	ErrDuplicateKey = errors.New("duplicate object key")

	// ErrTrailingData indicates bytes after the end of the JSON document.
	ErrTrailingData = errors.New("trailing data after JSON document")

	// ErrNotAnObject indicates a value that was required to be a JSON object.
	ErrNotAnObject = errors.New("value is not a JSON object")

	// ErrMalformedDigest indicates a digest object of the wrong shape.
	ErrMalformedDigest = errors.New("malformed digest")

	// ErrMalformedEventID indicates an event_id member that is not a
	// well-formed digest object.
	ErrMalformedEventID = errors.New("malformed event_id")

	// ErrDigestMismatch indicates a recomputed event identity that differs
	// from the one carried by the event.
	ErrDigestMismatch = errors.New("event_id mismatch")

	// ErrHygieneFailed indicates canonicalization input that did not review
	// as Ok.
	ErrHygieneFailed = errors.New("hygiene review failed")

	// ErrUnknownProfile indicates a canonicalization profile id that is not
	// registered.
	ErrUnknownProfile = errors.New("unknown canonicalization profile")

	// ErrInvalidHeader indicates a journal header with the wrong magic,
	// version, or non-zero reserved bytes.
	ErrInvalidHeader = errors.New("invalid journal header")

	// ErrTruncatedFrame indicates a journal that ends inside a frame.
	ErrTruncatedFrame = errors.New("truncated journal frame")

	// ErrPayloadTooLarge indicates a frame payload over the 16 MiB limit.
	ErrPayloadTooLarge = errors.New("frame payload too large")

	// ErrWriterClosed indicates use of a journal writer after finish or
	// after a terminal error.
	ErrWriterClosed = errors.New("journal writer is closed")

	// ErrReaderClosed indicates use of a journal reader after close.
	ErrReaderClosed = errors.New("journal reader is closed")

	// ErrJournalNotEmpty indicates an existing journal that already holds
	// frames where an empty one was required.
	ErrJournalNotEmpty = errors.New("journal is not empty")
)
