package journal

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Northroot-Labs/northroot/types"
)

func tempJournal(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.nrj")
}

func writeEvents(t *testing.T, path string, events ...string) {
	t.Helper()
	w, err := OpenWriter(path, DefaultWriterOptions())
	require.NoError(t, err)
	for _, e := range events {
		require.NoError(t, w.AppendEvent([]byte(e)))
	}
	require.NoError(t, w.Finish())
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := tempJournal(t)
	a := `{"seq":"1"}`
	b := `{"seq":"2"}`
	writeEvents(t, path, a, b)

	// File size is exactly header plus two framed payloads.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(HeaderSize+FramePrefixSize+len(a)+FramePrefixSize+len(b)), info.Size())

	r, err := OpenReader(path, Strict)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.ReadNextBytes()
	require.NoError(t, err)
	assert.Equal(t, a, string(got))
	assert.Equal(t, int64(HeaderSize), r.LastFrameOffset())

	got, err = r.ReadNextBytes()
	require.NoError(t, err)
	assert.Equal(t, b, string(got))

	_, err = r.ReadNextBytes()
	assert.Equal(t, io.EOF, err)
	assert.False(t, r.TruncationSeen())
}

func TestReadNextParsesEvents(t *testing.T) {
	path := tempJournal(t)
	writeEvents(t, path, `{"k":"v"}`)

	r, err := OpenReader(path, Strict)
	require.NoError(t, err)
	defer r.Close()

	v, err := r.ReadNext()
	require.NoError(t, err)
	require.Equal(t, types.KindObject, v.Kind)
	got, ok := v.Lookup("k")
	require.True(t, ok)
	assert.Equal(t, "v", got.Str)
}

func TestReopenAppend(t *testing.T) {
	path := tempJournal(t)
	writeEvents(t, path, `{"n":"1"}`)
	writeEvents(t, path, `{"n":"2"}`)

	r, err := OpenReader(path, Strict)
	require.NoError(t, err)
	defer r.Close()

	var all []string
	for {
		b, err := r.ReadNextBytes()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		all = append(all, string(b))
	}
	assert.Equal(t, []string{`{"n":"1"}`, `{"n":"2"}`}, all)
}

func TestHeaderValidation(t *testing.T) {
	t.Run("wrong magic", func(t *testing.T) {
		path := tempJournal(t)
		header := encodeHeader()
		copy(header, "NRJ0")
		require.NoError(t, os.WriteFile(path, header, 0o644))

		_, err := OpenReader(path, Strict)
		assert.ErrorIs(t, err, types.ErrInvalidHeader)
		_, err = OpenWriter(path, DefaultWriterOptions())
		assert.ErrorIs(t, err, types.ErrInvalidHeader)
	})

	t.Run("unknown version", func(t *testing.T) {
		path := tempJournal(t)
		header := encodeHeader()
		binary.LittleEndian.PutUint16(header[4:6], 2)
		require.NoError(t, os.WriteFile(path, header, 0o644))
		_, err := OpenReader(path, Strict)
		assert.ErrorIs(t, err, types.ErrInvalidHeader)
	})

	t.Run("non-zero flags", func(t *testing.T) {
		path := tempJournal(t)
		header := encodeHeader()
		header[6] = 0x01
		require.NoError(t, os.WriteFile(path, header, 0o644))
		_, err := OpenReader(path, Strict)
		assert.ErrorIs(t, err, types.ErrInvalidHeader)
	})

	t.Run("non-zero reserved", func(t *testing.T) {
		path := tempJournal(t)
		header := encodeHeader()
		header[15] = 0xff
		require.NoError(t, os.WriteFile(path, header, 0o644))
		_, err := OpenReader(path, Strict)
		assert.ErrorIs(t, err, types.ErrInvalidHeader)
	})

	t.Run("shorter than header", func(t *testing.T) {
		path := tempJournal(t)
		require.NoError(t, os.WriteFile(path, []byte("NRJ1"), 0o644))
		_, err := OpenReader(path, Strict)
		assert.ErrorIs(t, err, types.ErrInvalidHeader)
	})
}

func TestUnknownFrameKindIsSkipped(t *testing.T) {
	path := tempJournal(t)
	writeEvents(t, path, `{"n":"1"}`)

	// Splice in a synthetic frame of kind 0x7f, then a valid event.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	synthetic := make([]byte, 100)
	_, err = f.Write(encodeFramePrefix(0x7f, len(synthetic)))
	require.NoError(t, err)
	_, err = f.Write(synthetic)
	require.NoError(t, err)
	final := []byte(`{"n":"2"}`)
	_, err = f.Write(encodeFramePrefix(KindEventJSON, len(final)))
	require.NoError(t, err)
	_, err = f.Write(final)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := OpenReader(path, Strict)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.ReadNextBytes()
	require.NoError(t, err)
	assert.Equal(t, `{"n":"1"}`, string(got))

	got, err = r.ReadNextBytes()
	require.NoError(t, err)
	assert.Equal(t, `{"n":"2"}`, string(got))

	_, err = r.ReadNextBytes()
	assert.Equal(t, io.EOF, err)
}

func TestTruncation(t *testing.T) {
	build := func(t *testing.T) string {
		path := tempJournal(t)
		writeEvents(t, path, `{"n":"1"}`, `{"n":"22222222"}`)
		// Chop into the middle of the second frame's payload.
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.NoError(t, os.Truncate(path, info.Size()-5))
		return path
	}

	t.Run("strict", func(t *testing.T) {
		r, err := OpenReader(build(t), Strict)
		require.NoError(t, err)
		defer r.Close()

		_, err = r.ReadNextBytes()
		require.NoError(t, err)
		_, err = r.ReadNextBytes()
		assert.ErrorIs(t, err, types.ErrTruncatedFrame)
	})

	t.Run("permissive", func(t *testing.T) {
		r, err := OpenReader(build(t), Permissive)
		require.NoError(t, err)
		defer r.Close()

		got, err := r.ReadNextBytes()
		require.NoError(t, err)
		assert.Equal(t, `{"n":"1"}`, string(got))

		_, err = r.ReadNextBytes()
		assert.Equal(t, io.EOF, err)
		assert.True(t, r.TruncationSeen())
	})

	t.Run("permissive mid prefix", func(t *testing.T) {
		path := tempJournal(t)
		writeEvents(t, path, `{"n":"1"}`)
		// Leave three bytes of a dangling frame prefix.
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
		require.NoError(t, err)
		_, err = f.Write([]byte{KindEventJSON, 0x00, 0x05})
		require.NoError(t, err)
		require.NoError(t, f.Close())

		r, err := OpenReader(path, Permissive)
		require.NoError(t, err)
		defer r.Close()

		_, err = r.ReadNextBytes()
		require.NoError(t, err)
		_, err = r.ReadNextBytes()
		assert.Equal(t, io.EOF, err)
		assert.True(t, r.TruncationSeen())
	})
}

func TestOversizedLengthField(t *testing.T) {
	path := tempJournal(t)
	writeEvents(t, path)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	prefix := make([]byte, FramePrefixSize)
	prefix[0] = KindEventJSON
	binary.LittleEndian.PutUint32(prefix[2:6], MaxFramePayload+1)
	_, err = f.Write(prefix)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// An oversized declared length is corruption in both modes.
	for _, mode := range []Mode{Strict, Permissive} {
		r, err := OpenReader(path, mode)
		require.NoError(t, err)
		_, err = r.ReadNextBytes()
		assert.ErrorIs(t, err, types.ErrPayloadTooLarge)
		r.Close()
	}
}

func TestAppendRejectsOversizedPayload(t *testing.T) {
	path := tempJournal(t)
	w, err := OpenWriter(path, DefaultWriterOptions())
	require.NoError(t, err)

	err = w.AppendEvent(make([]byte, MaxFramePayload+1))
	assert.ErrorIs(t, err, types.ErrPayloadTooLarge)

	// The first error is terminal: the writer is unusable afterwards.
	err = w.AppendEvent([]byte(`{}`))
	assert.ErrorIs(t, err, types.ErrPayloadTooLarge)
	assert.Error(t, w.Flush())
}

func TestWriterOptions(t *testing.T) {
	t.Run("no create", func(t *testing.T) {
		_, err := OpenWriter(tempJournal(t), WriterOptions{Create: false, Append: true})
		assert.Error(t, err)
	})

	t.Run("expected empty", func(t *testing.T) {
		path := tempJournal(t)
		writeEvents(t, path, `{"n":"1"}`)
		_, err := OpenWriter(path, WriterOptions{Create: true, Append: true, ExpectedEmpty: true})
		assert.ErrorIs(t, err, types.ErrJournalNotEmpty)
	})

	t.Run("no append on non-empty", func(t *testing.T) {
		path := tempJournal(t)
		writeEvents(t, path, `{"n":"1"}`)
		_, err := OpenWriter(path, WriterOptions{Create: true, Append: false})
		assert.ErrorIs(t, err, types.ErrJournalNotEmpty)
	})

	t.Run("sync after append", func(t *testing.T) {
		path := tempJournal(t)
		w, err := OpenWriter(path, WriterOptions{Create: true, Append: true, SyncAfterAppend: true})
		require.NoError(t, err)
		require.NoError(t, w.AppendEvent([]byte(`{"n":"1"}`)))
		require.NoError(t, w.Finish())

		r, err := OpenReader(path, Strict)
		require.NoError(t, err)
		defer r.Close()
		_, err = r.ReadNextBytes()
		assert.NoError(t, err)
	})
}

func TestWriterLifecycle(t *testing.T) {
	path := tempJournal(t)
	w, err := OpenWriter(path, DefaultWriterOptions())
	require.NoError(t, err)
	require.NoError(t, w.AppendEvent([]byte(`{}`)))
	require.NoError(t, w.Flush())
	require.NoError(t, w.Finish())

	// Closed means closed.
	assert.ErrorIs(t, w.AppendEvent([]byte(`{}`)), types.ErrWriterClosed)
	assert.ErrorIs(t, w.Finish(), types.ErrWriterClosed)
}

func TestEmptyJournal(t *testing.T) {
	path := tempJournal(t)
	writeEvents(t, path)

	r, err := OpenReader(path, Strict)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.ReadNextBytes()
	assert.Equal(t, io.EOF, err)
}
