// Binary encoding for pattern set blobs.
//
// Patterns are arbitrary caller text (they may contain newlines), so they are
// stored length-prefixed rather than line-delimited.
//
// Format (little-endian):
//
//	count: uint32
//	per pattern:
//	  len:   uint32
//	  bytes: [len]byte
package bbolt

import (
	"encoding/binary"
	"fmt"
)

// encodePatterns encodes patterns into a single pre-sized buffer.
func encodePatterns(patterns []string) []byte {
	size := 4
	for _, p := range patterns {
		size += 4 + len(p)
	}

	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf, uint32(len(patterns)))
	off := 4
	for _, p := range patterns {
		binary.LittleEndian.PutUint32(buf[off:], uint32(len(p)))
		off += 4
		off += copy(buf[off:], p)
	}
	return buf
}

// decodePatterns is the inverse of encodePatterns. It copies out of data, so
// data may be a bbolt slice that is only valid inside its transaction.
func decodePatterns(data []byte) ([]string, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("pattern blob too short: %d bytes", len(data))
	}
	count := binary.LittleEndian.Uint32(data)
	off := 4

	// Each pattern needs at least its 4-byte length prefix.
	if uint64(count)*4 > uint64(len(data)-off) {
		return nil, fmt.Errorf("pattern blob truncated: count %d exceeds data", count)
	}

	patterns := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		if off+4 > len(data) {
			return nil, fmt.Errorf("pattern blob truncated at pattern %d", i)
		}
		n := int(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		if n < 0 || off+n > len(data) {
			return nil, fmt.Errorf("pattern blob truncated at pattern %d", i)
		}
		patterns = append(patterns, string(data[off:off+n]))
		off += n
	}
	if off != len(data) {
		return nil, fmt.Errorf("pattern blob has %d trailing bytes", len(data)-off)
	}
	return patterns, nil
}
