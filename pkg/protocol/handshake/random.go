package handshake

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Constant sizes of a marshaled Random.
const (
	RandomBytesLength = 28
	RandomLength      = RandomBytesLength + 4
)

// Random is the contribution each side mixes into the handshake so a
// transcript can never be replayed: a coarse timestamp plus 28 bytes from
// a CSPRNG.
type Random struct {
	GMTUnixTime time.Time
	RandomBytes [RandomBytesLength]byte
}

// MarshalFixed encodes the Random to its fixed-width binary form.
func (r *Random) MarshalFixed() [RandomLength]byte {
	var out [RandomLength]byte

	binary.BigEndian.PutUint32(out[0:], uint32(r.GMTUnixTime.Unix())) //nolint:gosec // G115
	copy(out[4:], r.RandomBytes[:])

	return out
}

// UnmarshalFixed populates the Random from its fixed-width binary form.
func (r *Random) UnmarshalFixed(data [RandomLength]byte) {
	secs := binary.BigEndian.Uint32(data[0:])
	r.GMTUnixTime = time.Unix(int64(secs), 0)
	copy(r.RandomBytes[:], data[4:])
}

// Populate fills the Random with fresh entropy and the current time.
func (r *Random) Populate() error {
	r.GMTUnixTime = time.Now()

	_, err := rand.Read(r.RandomBytes[:])

	return err
}
