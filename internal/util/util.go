// Package util contains small helpers used across the repo
package util

// BigEndianUint24 returns a uint24 from a big-endian byte slice.
func BigEndianUint24(raw []byte) uint32 {
	if len(raw) < 3 {
		return 0
	}

	rawCopy := make([]byte, 4)
	copy(rawCopy[1:], raw)

	return uint32(rawCopy[1])<<16 | uint32(rawCopy[2])<<8 | uint32(rawCopy[3])
}

// PutBigEndianUint24 writes a uint24 to a big-endian byte slice.
func PutBigEndianUint24(out []byte, in uint32) {
	out[0] = byte(in >> 16)
	out[1] = byte(in >> 8)
	out[2] = byte(in)
}
