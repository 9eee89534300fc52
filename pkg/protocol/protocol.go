// Package protocol provides the SEAL wire format
package protocol

// Version is the major/minor value carried in every record header
// and in the ClientHello/ServerHello.
type Version struct {
	Major, Minor uint8
}

// Version enums.
var (
	Version1_0 = Version{Major: 0x01, Minor: 0x00} //nolint:gochecknoglobals
)

// Equal determines if two protocol versions are equal.
func (v Version) Equal(x Version) bool {
	return v.Major == x.Major && v.Minor == x.Minor
}

// IsSupported returns true if this is a protocol version this
// implementation can speak. Only 1.0 exists today.
func IsSupported(v Version) bool {
	return v.Equal(Version1_0)
}
