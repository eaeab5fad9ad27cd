package maple

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// snapshotBufferSize is the buffer size used for reading and writing snapshots
const snapshotBufferSize = 1 << 20

// snapshotWriter writes little endian values and remembers the first error.
// Later writes are no-ops once an error occurred.
type snapshotWriter struct {
	w       *bufio.Writer
	scratch [8]byte
	err     error
}

func newSnapshotWriter(w io.Writer) *snapshotWriter {
	return &snapshotWriter{w: bufio.NewWriterSize(w, snapshotBufferSize)}
}

func (s *snapshotWriter) write(p []byte) {
	if s.err == nil {
		_, s.err = s.w.Write(p)
	}
}

func (s *snapshotWriter) uint8(v uint8) {
	s.scratch[0] = v
	s.write(s.scratch[:1])
}

func (s *snapshotWriter) uint32(v uint32) {
	binary.LittleEndian.PutUint32(s.scratch[:4], v)
	s.write(s.scratch[:4])
}

func (s *snapshotWriter) uint64(v uint64) {
	binary.LittleEndian.PutUint64(s.scratch[:8], v)
	s.write(s.scratch[:8])
}

// blob writes a length prefixed byte slice
func (s *snapshotWriter) blob(p []byte) {
	s.uint32(uint32(len(p)))
	s.write(p)
}

func (s *snapshotWriter) flush() error {
	if s.err != nil {
		return s.err
	}
	return s.w.Flush()
}

// snapshotReader is the counterpart of snapshotWriter
type snapshotReader struct {
	r       *bufio.Reader
	scratch [8]byte
	err     error
}

func newSnapshotReader(r io.Reader) *snapshotReader {
	return &snapshotReader{r: bufio.NewReaderSize(r, snapshotBufferSize)}
}

func (s *snapshotReader) read(p []byte) {
	if s.err == nil {
		_, s.err = io.ReadFull(s.r, p)
	}
}

func (s *snapshotReader) uint8() uint8 {
	s.read(s.scratch[:1])
	return s.scratch[0]
}

func (s *snapshotReader) uint32() uint32 {
	s.read(s.scratch[:4])
	return binary.LittleEndian.Uint32(s.scratch[:4])
}

func (s *snapshotReader) uint64() uint64 {
	s.read(s.scratch[:8])
	return binary.LittleEndian.Uint64(s.scratch[:8])
}

// blob reads a length prefixed byte slice
func (s *snapshotReader) blob() []byte {
	n := s.uint32()
	if s.err != nil {
		return nil
	}
	p := make([]byte, n)
	s.read(p)
	return p
}

// header reads and checks the file magic and version
func (s *snapshotReader) header() error {
	magic := make([]byte, len(magicNum))
	s.read(magic)
	version := s.uint8()
	if s.err != nil {
		return s.err
	}
	if string(magic) != magicNum {
		return fmt.Errorf("invalid file format: magic number mismatch")
	}
	if int(version) != mapleVersion {
		return fmt.Errorf("unsupported version: %d (expected %d)", version, mapleVersion)
	}
	return nil
}
