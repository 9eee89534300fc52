package protocol

// ApplicationData messages are carried by the record layer and are treated
// as transparent data: the record layer encrypts them under the current
// traffic keys but never inspects them.
type ApplicationData struct {
	Data []byte
}

// ContentType returns the ContentType of this Content.
func (a ApplicationData) ContentType() ContentType {
	return ContentTypeApplicationData
}

// Marshal encodes the ApplicationData to binary.
func (a *ApplicationData) Marshal() ([]byte, error) {
	return append([]byte{}, a.Data...), nil
}

// Unmarshal populates the ApplicationData from binary.
func (a *ApplicationData) Unmarshal(data []byte) error {
	a.Data = append([]byte{}, data...)

	return nil
}
