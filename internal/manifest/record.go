package manifest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fim/internal/digest"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrCorruptRecord = errors.New("corrupt record")
)

// Record is the baseline fingerprint of one tracked file.
type Record struct {
	ModTime int64  // seconds since epoch
	Size    int64  // bytes
	Digest  string // content digest
}

// Encode renders r in the on-disk form "<mtime> <size> <digest>", with no
// trailing newline.
func (r Record) Encode() []byte {
	return []byte(fmt.Sprintf("%d %d %s", r.ModTime, r.Size, r.Digest))
}

// ParseRecord is the inverse of Encode. Any deviation from three
// whitespace-separated tokens of the expected shape is ErrCorruptRecord.
func ParseRecord(data []byte) (Record, error) {
	fields := strings.Fields(string(data))
	if len(fields) != 3 {
		return Record{}, fmt.Errorf("%w: want 3 fields, got %d", ErrCorruptRecord, len(fields))
	}

	mtime, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: mtime: %v", ErrCorruptRecord, err)
	}

	size, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: size: %v", ErrCorruptRecord, err)
	}
	if size < 0 {
		return Record{}, fmt.Errorf("%w: negative size %d", ErrCorruptRecord, size)
	}

	if !digest.Valid(fields[2]) {
		return Record{}, fmt.Errorf("%w: bad digest %q", ErrCorruptRecord, fields[2])
	}

	return Record{ModTime: mtime, Size: size, Digest: fields[2]}, nil
}
