// Package alert implements the SEAL alert content type, used to signal
// orderly shutdown and fatal failures to the peer.
package alert

import (
	"errors"
	"fmt"

	"github.com/sealproto/seal/pkg/protocol"
)

var errBufferTooSmall = &protocol.TemporaryError{Err: errors.New("buffer is too small")} //nolint:err113

// Level is the severity of the Alert.
type Level uint8

// Level enums.
const (
	Warning Level = 1
	Fatal   Level = 2
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "Warning"
	case Fatal:
		return "Fatal"
	default:
		return "Invalid"
	}
}

// Description is the reason for the Alert.
type Description uint8

// Description enums.
const (
	CloseNotify          Description = 0
	UnexpectedMessage    Description = 10
	BadRecordMAC         Description = 20
	RecordOverflow       Description = 22
	HandshakeFailure     Description = 40
	BadCertificate       Description = 42
	CertificateExpired   Description = 45
	CertificateUnknown   Description = 46
	UnknownCA            Description = 48
	DecodeError          Description = 50
	ProtocolVersion      Description = 70
	InsufficientSecurity Description = 71
	InternalError        Description = 80
)

func (d Description) String() string { //nolint:cyclop
	switch d {
	case CloseNotify:
		return "CloseNotify"
	case UnexpectedMessage:
		return "UnexpectedMessage"
	case BadRecordMAC:
		return "BadRecordMAC"
	case RecordOverflow:
		return "RecordOverflow"
	case HandshakeFailure:
		return "HandshakeFailure"
	case BadCertificate:
		return "BadCertificate"
	case CertificateExpired:
		return "CertificateExpired"
	case CertificateUnknown:
		return "CertificateUnknown"
	case UnknownCA:
		return "UnknownCA"
	case DecodeError:
		return "DecodeError"
	case ProtocolVersion:
		return "ProtocolVersion"
	case InsufficientSecurity:
		return "InsufficientSecurity"
	case InternalError:
		return "InternalError"
	default:
		return "Invalid"
	}
}

// Alert is a one-shot warning or error notification. Fatal alerts and
// CloseNotify terminate the connection.
type Alert struct {
	Level       Level
	Description Description
}

// ContentType returns the ContentType of this Content.
func (a Alert) ContentType() protocol.ContentType {
	return protocol.ContentTypeAlert
}

// Marshal encodes the Alert to binary.
func (a *Alert) Marshal() ([]byte, error) {
	return []byte{byte(a.Level), byte(a.Description)}, nil
}

// Unmarshal populates the Alert from binary.
func (a *Alert) Unmarshal(data []byte) error {
	if len(data) != 2 {
		return errBufferTooSmall
	}

	a.Level = Level(data[0])
	a.Description = Description(data[1])

	return nil
}

func (a *Alert) String() string {
	return fmt.Sprintf("Alert %s: %s", a.Level, a.Description)
}
