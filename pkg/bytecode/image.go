package bytecode

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ImageMagic prefixes every compiled program image: "MNTY".
var ImageMagic = []byte{'M', 'N', 'T', 'Y'}

// cborEncMode uses canonical mode so identical programs produce identical
// images.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// IsImage reports whether data starts with the image magic.
func IsImage(data []byte) bool {
	return bytes.HasPrefix(data, ImageMagic)
}

// MarshalChunk serializes a Chunk to an image: magic followed by CBOR.
func MarshalChunk(c *Chunk) ([]byte, error) {
	body, err := cborEncMode.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("bytecode: marshal chunk: %w", err)
	}
	out := make([]byte, 0, len(ImageMagic)+len(body))
	out = append(out, ImageMagic...)
	return append(out, body...), nil
}

// UnmarshalChunk deserializes an image produced by MarshalChunk.
func UnmarshalChunk(data []byte) (*Chunk, error) {
	if !IsImage(data) {
		return nil, fmt.Errorf("bytecode: not a monty image (bad magic)")
	}
	var c Chunk
	if err := cbor.Unmarshal(data[len(ImageMagic):], &c); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal chunk: %w", err)
	}
	if c.Version == 0 || c.Version > BytecodeVersion {
		return nil, fmt.Errorf("bytecode: unsupported image version %d (max %d)", c.Version, BytecodeVersion)
	}
	return &c, nil
}
