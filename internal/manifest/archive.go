package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"fim/internal/digest"
	fimerrors "fim/internal/errors"

	"github.com/klauspost/compress/zstd"
)

// ExportStats summarizes an export.
type ExportStats struct {
	Records int // records written
	Skipped int // corrupt records left out
}

// Export writes every record as "<key> <mtime> <size> <digest>\n" into a
// zstd stream on w.
func (m *Manifest) Export(w io.Writer) (ExportStats, error) {
	var stats ExportStats

	enc, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return stats, fmt.Errorf("creating encoder: %w", err)
	}

	bw := bufio.NewWriter(enc)
	err = m.backend.Each(func(key string, value []byte) error {
		rec, err := ParseRecord(value)
		if err != nil {
			stats.Skipped++
			return nil
		}
		if _, err := fmt.Fprintf(bw, "%s %s\n", key, rec.Encode()); err != nil {
			return err
		}
		stats.Records++
		return nil
	})
	if err != nil {
		enc.Close()
		return stats, fmt.Errorf("exporting records: %w", err)
	}

	if err := bw.Flush(); err != nil {
		enc.Close()
		return stats, fmt.Errorf("flushing export: %w", err)
	}
	if err := enc.Close(); err != nil {
		return stats, fmt.Errorf("finalizing compression: %w", err)
	}
	return stats, nil
}

// Import reads an Export stream and writes each record, overwriting
// whatever is stored under the same key. It stops at the first malformed
// line; records before it stay written.
func (m *Manifest) Import(r io.Reader) (int, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return 0, fmt.Errorf("creating decoder: %w", err)
	}
	defer dec.Close()

	n := 0
	line := 0
	scanner := bufio.NewScanner(dec)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		key, rest, ok := strings.Cut(text, " ")
		if !ok || !digest.Valid(key) {
			return n, fimerrors.CorruptRecord(fmt.Sprintf("line %d", line),
				fmt.Errorf("%w: bad key", ErrCorruptRecord))
		}
		rec, err := ParseRecord([]byte(rest))
		if err != nil {
			return n, fimerrors.CorruptRecord(fmt.Sprintf("line %d", line), err)
		}

		if err := m.backend.Put(key, rec.Encode()); err != nil {
			return n, fmt.Errorf("importing %s: %w", key, err)
		}
		n++
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, zstd.ErrMagicMismatch) {
			return n, fimerrors.CorruptRecord("archive", err)
		}
		return n, fmt.Errorf("reading archive: %w", err)
	}
	return n, nil
}
