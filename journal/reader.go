package journal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Northroot-Labs/northroot/canonical"
	"github.com/Northroot-Labs/northroot/types"
)

// Mode selects how a reader treats a journal that ends inside a frame.
type Mode int

const (
	// Strict surfaces trailing truncation as an error.
	Strict Mode = iota

	// Permissive treats trailing truncation as a clean end of stream and
	// records it in the TruncationSeen metric instead of failing.
	Permissive
)

// Reader walks a journal frame by frame. It holds one frame in memory at a
// time, never seeks backwards, and keeps no state beyond its cursor, so a
// sealed journal can be read by any number of concurrent readers each with
// their own Reader.
type Reader struct {
	f              *os.File
	mode           Mode
	offset         int64
	frameOffset    int64
	truncationSeen bool
	closed         bool
}

// OpenReader opens a journal and validates its header.
func OpenReader(path string, mode Mode) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: file shorter than header", types.ErrInvalidHeader)
	}
	if err := validateHeader(header); err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{f: f, mode: mode, offset: HeaderSize}, nil
}

// ReadNext returns the next event in the journal.
//
// Frames of unknown kind are skipped for forward compatibility. A clean
// end of file at a frame boundary returns io.EOF. A file ending mid-frame
// returns ErrTruncatedFrame in Strict mode; in Permissive mode it returns
// io.EOF and sets TruncationSeen, so callers can record the fact without
// failing. A payload over the size limit or an unparsable EventJson
// payload is corruption and errors in both modes.
func (r *Reader) ReadNext() (*types.Value, error) {
	payload, err := r.nextEventPayload()
	if err != nil {
		return nil, err
	}
	v, err := canonical.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("frame at offset %d: %w", r.frameOffset, err)
	}
	return v, nil
}

// ReadNextBytes returns the raw payload of the next EventJson frame
// without parsing it. Semantics otherwise match ReadNext.
func (r *Reader) ReadNextBytes() ([]byte, error) {
	return r.nextEventPayload()
}

func (r *Reader) nextEventPayload() ([]byte, error) {
	if r.closed {
		return nil, types.ErrReaderClosed
	}
	for {
		kind, payload, err := r.readFrame()
		if err != nil {
			return nil, err
		}
		if kind == KindEventJSON {
			return payload, nil
		}
		// Unknown kind: skip and continue.
	}
}

// readFrame reads one frame at the cursor. io.EOF means a clean end of
// stream (possibly after forgiven truncation in Permissive mode).
func (r *Reader) readFrame() (byte, []byte, error) {
	prefix := make([]byte, FramePrefixSize)
	n, err := io.ReadFull(r.f, prefix)
	if err == io.EOF && n == 0 {
		return 0, nil, io.EOF
	}
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return 0, nil, r.truncated()
		}
		return 0, nil, fmt.Errorf("read frame prefix: %w", err)
	}

	kind := prefix[0]
	length := binary.LittleEndian.Uint32(prefix[2:6])
	if length > MaxFramePayload {
		return 0, nil, fmt.Errorf("%w: frame at offset %d declares %d bytes", types.ErrPayloadTooLarge, r.offset, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r.f, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return 0, nil, r.truncated()
		}
		return 0, nil, fmt.Errorf("read frame payload: %w", err)
	}

	r.frameOffset = r.offset
	r.offset += int64(FramePrefixSize) + int64(length)
	return kind, payload, nil
}

func (r *Reader) truncated() error {
	if r.mode == Permissive {
		r.truncationSeen = true
		return io.EOF
	}
	return fmt.Errorf("%w: journal ends inside frame at offset %d", types.ErrTruncatedFrame, r.offset)
}

// TruncationSeen reports whether a Permissive read forgave trailing
// truncation.
func (r *Reader) TruncationSeen() bool { return r.truncationSeen }

// LastFrameOffset returns the byte offset of the most recently returned
// frame, or 0 before the first read.
func (r *Reader) LastFrameOffset() int64 { return r.frameOffset }

// Close releases the file handle.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.f.Close()
}
