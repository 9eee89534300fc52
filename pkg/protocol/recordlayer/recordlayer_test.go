package recordlayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealproto/seal/pkg/protocol"
	"github.com/sealproto/seal/pkg/protocol/alert"
)

func TestRecordLayerRoundTrip(t *testing.T) {
	for _, test := range []struct {
		Name    string
		Content protocol.Content
	}{
		{
			Name:    "Alert",
			Content: &alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure},
		},
		{
			Name:    "ApplicationData",
			Content: &protocol.ApplicationData{Data: []byte("hello seal")},
		},
		{
			Name:    "Empty ApplicationData",
			Content: &protocol.ApplicationData{Data: []byte{}},
		},
	} {
		pkt := &RecordLayer{
			Header:  Header{Version: protocol.Version1_0},
			Content: test.Content,
		}
		raw, err := pkt.Marshal()
		require.NoError(t, err, test.Name)

		parsed := &RecordLayer{}
		require.NoError(t, parsed.Unmarshal(raw), test.Name)
		assert.Equal(t, test.Content.ContentType(), parsed.Header.ContentType, test.Name)
		assert.Equal(t, test.Content, parsed.Content, test.Name)
	}
}

func TestRecordLayerUnmarshalInvalid(t *testing.T) {
	t.Run("UnknownContentType", func(t *testing.T) {
		raw := []byte{0x63, 0x01, 0x00, 0x00, 0x01, 0xFF}
		assert.ErrorIs(t, (&RecordLayer{}).Unmarshal(raw), errInvalidContentType)
	})

	t.Run("WrongVersion", func(t *testing.T) {
		raw := []byte{0x15, 0x02, 0x00, 0x00, 0x02, 0x02, 0x28}
		assert.Error(t, (&RecordLayer{}).Unmarshal(raw))
	})

	t.Run("TruncatedBody", func(t *testing.T) {
		raw := []byte{0x17, 0x01, 0x00, 0x00, 0x05, 0xAA}
		assert.ErrorIs(t, (&RecordLayer{}).Unmarshal(raw), errBufferTooSmall)
	})
}

func TestReadRecordIncremental(t *testing.T) {
	pkt := &RecordLayer{
		Header:  Header{Version: protocol.Version1_0},
		Content: &protocol.ApplicationData{Data: []byte("stream me")},
	}
	full, err := pkt.Marshal()
	require.NoError(t, err)

	// Feed the record one byte at a time; every prefix must report
	// ErrIncomplete without consuming anything.
	var buf []byte
	for _, b := range full[:len(full)-1] {
		buf = append(buf, b)

		raw, rest, readErr := ReadRecord(buf, 0)
		assert.ErrorIs(t, readErr, ErrIncomplete)
		assert.Nil(t, raw)
		assert.Equal(t, buf, rest)
	}

	buf = append(buf, full[len(full)-1])
	raw, rest, err := ReadRecord(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, full, raw)
	assert.Empty(t, rest)
}

func TestReadRecordCoalesced(t *testing.T) {
	first, err := (&RecordLayer{
		Header:  Header{Version: protocol.Version1_0},
		Content: &protocol.ApplicationData{Data: []byte("first")},
	}).Marshal()
	require.NoError(t, err)
	second, err := (&RecordLayer{
		Header:  Header{Version: protocol.Version1_0},
		Content: &protocol.ApplicationData{Data: []byte("second")},
	}).Marshal()
	require.NoError(t, err)

	buf := append(append([]byte{}, first...), second...)

	raw, rest, err := ReadRecord(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, first, raw)

	raw, rest, err = ReadRecord(rest, 0)
	require.NoError(t, err)
	assert.Equal(t, second, raw)
	assert.Empty(t, rest)
}

func TestReadRecordOverflow(t *testing.T) {
	// A header declaring more than maxLen must fail before the body
	// arrives; buffering it would hand the peer an allocation primitive.
	header := &Header{
		ContentType: protocol.ContentTypeApplicationData,
		Version:     protocol.Version1_0,
		ContentLen:  1024,
	}
	raw, err := header.Marshal()
	require.NoError(t, err)

	_, _, err = ReadRecord(raw, 512)
	assert.ErrorIs(t, err, ErrRecordOverflow)

	// At exactly maxLen the record is fine, just not complete yet.
	_, _, err = ReadRecord(raw, 1024)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestHeaderRoundTrip(t *testing.T) {
	header := &Header{
		ContentType: protocol.ContentTypeHandshake,
		Version:     protocol.Version1_0,
		ContentLen:  0x1234,
	}
	raw, err := header.Marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x16, 0x01, 0x00, 0x12, 0x34}, raw)

	parsed := &Header{}
	require.NoError(t, parsed.Unmarshal(raw))
	assert.Equal(t, header, parsed)
}
