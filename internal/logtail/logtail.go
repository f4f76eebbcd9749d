package logtail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// blockSize is how far Read steps back from the end of the file per read.
const blockSize = 4096

// Read returns at most maxLines complete lines from the end of the file at
// path, oldest first. A missing file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log: %w", err)
	}

	tail, err := readTail(file, info.Size(), maxLines)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return splitLines(tail, maxLines), nil
}

// readTail reads backwards from size until the buffer holds more than
// maxLines line breaks or the start of the file is reached.
func readTail(r io.ReaderAt, size int64, maxLines int) ([]byte, error) {
	var buf []byte
	offset := size
	for offset > 0 && bytes.Count(buf, []byte{'\n'}) <= maxLines {
		n := int64(blockSize)
		if offset < n {
			n = offset
		}
		offset -= n
		block := make([]byte, n)
		if _, err := r.ReadAt(block, offset); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		buf = append(block, buf...)
	}
	if offset > 0 {
		// The first line in buf is partial.
		if i := bytes.IndexByte(buf, '\n'); i >= 0 {
			buf = buf[i+1:]
		}
	}
	return buf, nil
}

func splitLines(data []byte, maxLines int) []string {
	data = bytes.TrimSuffix(data, []byte{'\n'})
	if len(data) == 0 {
		return nil
	}
	parts := bytes.Split(data, []byte{'\n'})
	if len(parts) > maxLines {
		parts = parts[len(parts)-maxLines:]
	}
	lines := make([]string, len(parts))
	for i, p := range parts {
		lines[i] = string(bytes.TrimSuffix(p, []byte{'\r'}))
	}
	return lines
}
