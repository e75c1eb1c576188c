package storage

import (
	"testing"
	"time"

	"github.com/evidentia/docsynth/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("health_report.pdf")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.Len(t, data, 8)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{1, 2, 3})
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	chunk := &core.Chunk{
		Id:             core.ID(7),
		DocumentId:     core.IDFromContent("health_report.pdf"),
		SourceDocument: "health_report.pdf",
		Theme:          "health",
		Text:           "Immunization coverage reached 91 percent nationally.",
		Position:       3,
		WordCount:      6,
		InsertedAt:     now,
		Vectors: map[string][]float32{
			"all-mpnet-base-v2": {0.6, 0.8},
		},
	}

	data, err := MarshalChunk(chunk)
	require.NoError(t, err)

	decoded, err := UnmarshalChunk(data)
	require.NoError(t, err)
	assert.Equal(t, chunk, decoded)
}

func TestUnmarshalChunk_Corrupt(t *testing.T) {
	_, err := UnmarshalChunk([]byte("{not json"))
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
