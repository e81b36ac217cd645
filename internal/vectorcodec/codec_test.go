package vectorcodec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		vec  []float32
	}{
		{"empty", []float32{}},
		{"nil", nil},
		{"single", []float32{1.5}},
		{"dimension384", make([]float32, 384)},
		{"negatives and fractions", []float32{-1.25, 0, 3.14159, -0.0001, 1e10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := Encode(tt.vec)
			require.Len(t, encoded, len(tt.vec)*4)

			decoded, err := Decode(encoded)
			require.NoError(t, err)
			require.Len(t, decoded, len(tt.vec))
			for i := range tt.vec {
				require.Equal(t, tt.vec[i], decoded[i])
			}
		})
	}
}

func TestDecodeRejectsUnalignedLength(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestEncodeEmptyIsEmptyByteString(t *testing.T) {
	require.Equal(t, []byte{}, Encode(nil))
}
