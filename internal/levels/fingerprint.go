package levels

import (
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/shootyourshot/backend/internal/game"
)

// Canonicalize decodes raw level JSON and re-encodes it, so equivalent
// documents (key case, spacing, legacy field names) produce identical bytes.
func Canonicalize(codec *game.Codec, raw []byte) (*game.Level, []byte, error) {
	level, err := codec.DecodeLevel(raw)
	if err != nil {
		return nil, nil, err
	}
	data, err := codec.EncodeLevel(level)
	if err != nil {
		return nil, nil, err
	}
	return level, data, nil
}

// Fingerprint is the xxh3 hash of canonical level bytes as 16 hex digits.
func Fingerprint(canonical []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(canonical))
}
