package protocol

// ContentType is the type tag of a record's payload.
type ContentType uint8

// ContentType enums.
const (
	ContentTypeAlert           ContentType = 21
	ContentTypeHandshake       ContentType = 22
	ContentTypeApplicationData ContentType = 23
)

// Content is the payload of a record.
type Content interface {
	ContentType() ContentType
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}
