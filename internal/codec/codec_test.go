package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		encoding string
		want     []byte
		wantErr  bool
	}{
		{
			name:     "base64 payload is decoded",
			data:     []byte("aGVsbG8gd29ybGQ="),
			encoding: "base64",
			want:     []byte("hello world"),
		},
		{
			name:     "base64 with line wrapping",
			data:     []byte("aGVsbG8g\r\nd29ybGQ=\n"),
			encoding: "base64",
			want:     []byte("hello world"),
		},
		{
			name:     "encoding name is case-insensitive",
			data:     []byte("aGVsbG8gd29ybGQ="),
			encoding: "BASE64",
			want:     []byte("hello world"),
		},
		{
			name:     "other encodings pass through",
			data:     []byte("plain text"),
			encoding: "7bit",
			want:     []byte("plain text"),
		},
		{
			name: "empty encoding passes through",
			data: []byte{0x00, 0xff},
			want: []byte{0x00, 0xff},
		},
		{
			name:     "malformed base64",
			data:     []byte("!!! not base64 !!!"),
			encoding: "base64",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data, tt.encoding)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDecode)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	data := []byte{0x00, 0x01, 0xfe, 0xff}

	encoded := Encode(data)
	decoded, err := Decode([]byte(encoded), "base64")

	assert.NoError(t, err)
	assert.Equal(t, data, decoded)
}
