// Package handshake implements the SEAL handshake message types. Every
// message marshaled or parsed here also feeds the transcript hash, so the
// encodings must be strictly deterministic.
package handshake

import (
	"github.com/sealproto/seal/pkg/protocol"
)

// Type is the enumerated type of a handshake message.
type Type uint8

// Type enums.
const (
	TypeClientHello       Type = 1
	TypeServerHello       Type = 2
	TypeCertificate       Type = 11
	TypeCertificateVerify Type = 15
	TypeFinished          Type = 20
)

func (t Type) String() string {
	switch t {
	case TypeClientHello:
		return "ClientHello"
	case TypeServerHello:
		return "ServerHello"
	case TypeCertificate:
		return "Certificate"
	case TypeCertificateVerify:
		return "CertificateVerify"
	case TypeFinished:
		return "Finished"
	default:
		return "Invalid"
	}
}

// Message is a parsed handshake message body.
type Message interface {
	Type() Type
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// Handshake pairs a Header with its Message and implements protocol.Content
// so it can ride in a record.
type Handshake struct {
	Header  Header
	Message Message
}

// ContentType returns the ContentType of this Content.
func (h Handshake) ContentType() protocol.ContentType {
	return protocol.ContentTypeHandshake
}

// Marshal encodes the Handshake to binary.
func (h *Handshake) Marshal() ([]byte, error) {
	if h.Message == nil {
		return nil, errHandshakeMessageUnset
	}

	msg, err := h.Message.Marshal()
	if err != nil {
		return nil, err
	}

	h.Header.Type = h.Message.Type()
	h.Header.Length = uint32(len(msg)) //nolint:gosec // G115
	header, err := h.Header.Marshal()
	if err != nil {
		return nil, err
	}

	return append(header, msg...), nil
}

// Unmarshal populates the Handshake from binary.
func (h *Handshake) Unmarshal(data []byte) error {
	if err := h.Header.Unmarshal(data); err != nil {
		return err
	}
	if len(data) < HeaderSize+int(h.Header.Length) {
		return errBufferTooSmall
	}

	switch h.Header.Type {
	case TypeClientHello:
		h.Message = &MessageClientHello{}
	case TypeServerHello:
		h.Message = &MessageServerHello{}
	case TypeCertificate:
		h.Message = &MessageCertificate{}
	case TypeCertificateVerify:
		h.Message = &MessageCertificateVerify{}
	case TypeFinished:
		h.Message = &MessageFinished{}
	default:
		return errNotImplemented
	}

	return h.Message.Unmarshal(data[HeaderSize : HeaderSize+int(h.Header.Length)])
}

// Split cuts a record payload into individual raw handshake messages,
// header included. Multiple handshake messages may be packed into a single
// record as long as they belong to the same flight.
func Split(data []byte) ([][]byte, error) {
	out := [][]byte{}
	for offset := 0; offset != len(data); {
		h := Header{}
		if err := h.Unmarshal(data[offset:]); err != nil {
			return nil, err
		}

		msgLen := HeaderSize + int(h.Length)
		if offset+msgLen > len(data) {
			return nil, errBufferTooSmall
		}

		out = append(out, data[offset:offset+msgLen])
		offset += msgLen
	}

	return out, nil
}
