package database

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Embedding blob layout for backends without a vector column type:
//
//	[1]  family length n
//	[n]  family tag (ASCII)
//	[2]  dimension, little-endian uint16
//	[4d] float32 components, little-endian
//
// The explicit family/dimension tag keeps a backend migration from
// silently corrupting comparisons: a blob whose payload disagrees with
// its tag fails decode instead of producing a wrong vector.

const blobMaxFamilyLen = 255

// EncodeEmbedding serializes an embedding with its family tag.
func EncodeEmbedding(family string, embedding []float32) ([]byte, error) {
	if len(family) == 0 || len(family) > blobMaxFamilyLen {
		return nil, fmt.Errorf("invalid embedding family %q", family)
	}
	if len(embedding) == 0 || len(embedding) > math.MaxUint16 {
		return nil, fmt.Errorf("invalid embedding dimension %d", len(embedding))
	}

	buf := make([]byte, 0, 1+len(family)+2+4*len(embedding))
	buf = append(buf, byte(len(family)))
	buf = append(buf, family...)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(embedding)))
	for _, v := range embedding {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf, nil
}

// DecodeEmbedding deserializes an embedding blob, verifying that the
// payload length matches the stored dimension.
func DecodeEmbedding(blob []byte) (family string, embedding []float32, err error) {
	if len(blob) < 1 {
		return "", nil, fmt.Errorf("embedding blob too short")
	}
	n := int(blob[0])
	if len(blob) < 1+n+2 {
		return "", nil, fmt.Errorf("embedding blob truncated in header")
	}
	family = string(blob[1 : 1+n])
	dim := int(binary.LittleEndian.Uint16(blob[1+n : 1+n+2]))

	payload := blob[1+n+2:]
	if len(payload) != 4*dim {
		return "", nil, fmt.Errorf("embedding blob payload is %d bytes, tag declares dimension %d", len(payload), dim)
	}

	embedding = make([]float32, dim)
	for i := 0; i < dim; i++ {
		embedding[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[4*i:]))
	}
	return family, embedding, nil
}
