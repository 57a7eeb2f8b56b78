package journal

import (
	"fmt"
	"io"
	"os"

	"github.com/Northroot-Labs/northroot/types"
)

// WriterOptions control how a journal is opened for appending.
type WriterOptions struct {
	// Create makes a fresh journal (header included) when the file does
	// not exist.
	Create bool

	// Append allows opening a journal that already holds frames. When
	// false, the journal must be empty (header only) or absent.
	Append bool

	// SyncAfterAppend fsyncs after the header write and after every
	// appended frame, making each append durable before it returns.
	SyncAfterAppend bool

	// ExpectedEmpty refuses journals that already hold frames.
	ExpectedEmpty bool
}

// DefaultWriterOptions create the file if needed and append to it.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{Create: true, Append: true}
}

// Writer appends EventJson frames to a journal. A writer owns its file
// handle exclusively; it is not safe for concurrent use.
//
// Every error is terminal: after the first failure the writer is closed
// and all further calls return the recorded error. A frame is written with
// a single write call, so a crash leaves either the whole frame or a
// trailing partial frame the reader can detect — never interleaved bytes.
type Writer struct {
	f    *os.File
	sync bool
	err  error
}

// OpenWriter opens or creates a journal for appending.
//
// On a fresh (or empty) file the 16-byte header is written first. On an
// existing file the header is validated; a magic or version mismatch
// refuses the file rather than risking a foreign format.
func OpenWriter(path string, opts WriterOptions) (*Writer, error) {
	flag := os.O_RDWR
	if opts.Create {
		flag |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	w := &Writer{f: f, sync: opts.SyncAfterAppend}
	if err := w.prepare(opts); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) prepare(opts WriterOptions) error {
	info, err := w.f.Stat()
	if err != nil {
		return fmt.Errorf("stat journal: %w", err)
	}
	size := info.Size()

	if size == 0 {
		if _, err := w.f.Write(encodeHeader()); err != nil {
			return fmt.Errorf("write journal header: %w", err)
		}
		if w.sync {
			if err := w.f.Sync(); err != nil {
				return fmt.Errorf("sync journal header: %w", err)
			}
		}
		return nil
	}

	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(w.f, header); err != nil {
		return fmt.Errorf("%w: file shorter than header", types.ErrInvalidHeader)
	}
	if err := validateHeader(header); err != nil {
		return err
	}
	if size > HeaderSize && (opts.ExpectedEmpty || !opts.Append) {
		return fmt.Errorf("%w: %d bytes of frames present", types.ErrJournalNotEmpty, size-HeaderSize)
	}
	if _, err := w.f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek journal end: %w", err)
	}
	return nil
}

// AppendEvent writes one EventJson frame holding payload verbatim.
//
// The writer does not canonicalize and does not compute identities; the
// caller supplies JSON already bearing its correct event_id. The only
// checks here are the frame size limit and writer liveness.
func (w *Writer) AppendEvent(payload []byte) error {
	if w.err != nil {
		return w.err
	}
	if len(payload) > MaxFramePayload {
		return w.fail(fmt.Errorf("%w: %d bytes", types.ErrPayloadTooLarge, len(payload)))
	}

	frame := make([]byte, 0, FramePrefixSize+len(payload))
	frame = append(frame, encodeFramePrefix(KindEventJSON, len(payload))...)
	frame = append(frame, payload...)

	if _, err := w.f.Write(frame); err != nil {
		return w.fail(fmt.Errorf("append frame: %w", err))
	}
	if w.sync {
		if err := w.f.Sync(); err != nil {
			return w.fail(fmt.Errorf("sync frame: %w", err))
		}
	}
	return nil
}

// Flush forces written frames to storage.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.f.Sync(); err != nil {
		return w.fail(fmt.Errorf("flush journal: %w", err))
	}
	return nil
}

// Finish flushes and closes the journal. After Finish the writer is
// closed; with SyncAfterAppend set, every previously appended frame is
// durable by the time Finish returns.
func (w *Writer) Finish() error {
	if w.err != nil {
		return w.err
	}
	if w.sync {
		if err := w.f.Sync(); err != nil {
			return w.fail(fmt.Errorf("sync journal: %w", err))
		}
	}
	if err := w.f.Close(); err != nil {
		w.err = types.ErrWriterClosed
		return fmt.Errorf("close journal: %w", err)
	}
	w.err = types.ErrWriterClosed
	return nil
}

// Size returns the current journal size in bytes.
func (w *Writer) Size() (int64, error) {
	if w.err != nil {
		return 0, w.err
	}
	info, err := w.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat journal: %w", err)
	}
	return info.Size(), nil
}

// fail records the first terminal error and closes the file. The writer is
// unusable afterwards.
func (w *Writer) fail(err error) error {
	w.err = err
	w.f.Close()
	return err
}
