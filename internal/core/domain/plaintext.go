package domain

import "encoding/binary"

// DecodePlaintextAmount decodes a verified plaintext byte buffer into the
// asset amount it encodes. The buffer is little-endian; buffers shorter than
// 8 bytes are zero-padded on the high-order side, and buffers longer than
// 8 bytes use only the first 8 (deliberate truncation, not an error).
// An empty buffer decodes to 0.
func DecodePlaintextAmount(plaintext []byte) uint64 {
	if len(plaintext) >= 8 {
		return binary.LittleEndian.Uint64(plaintext[:8])
	}
	var padded [8]byte
	copy(padded[:], plaintext)
	return binary.LittleEndian.Uint64(padded[:])
}
