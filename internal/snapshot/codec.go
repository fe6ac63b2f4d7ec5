// Package snapshot persists parsed snapshots in a per-repository cache,
// one file per fixed revision.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"docdelta/internal/codebase"
)

// FormatVersion is bumped whenever the envelope layout changes. Files
// with another version fail to load as corrupt.
const FormatVersion = 1

// envelope is the serialized form of a snapshot.
type envelope struct {
	FormatVersion int                `json:"formatVersion"`
	Revision      string             `json:"revision,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	Objects       []*codebase.Object `json:"objects"`
}

// EncodeAll/DecodeAll are safe for concurrent use on a shared coder.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// encode serializes a snapshot and compresses it.
func encode(snap *codebase.Snapshot, revision string, now time.Time) ([]byte, error) {
	data, err := json.Marshal(envelope{
		FormatVersion: FormatVersion,
		Revision:      revision,
		CreatedAt:     now.UTC(),
		Objects:       snap.Objects(),
	})
	if err != nil {
		return nil, err
	}
	return encoder.EncodeAll(data, nil), nil
}

// decompress returns the raw envelope JSON.
func decompress(data []byte) ([]byte, error) {
	return decoder.DecodeAll(data, nil)
}

// decodeEnvelope parses envelope JSON. Every call yields new objects.
func decodeEnvelope(raw []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if env.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("unsupported format version %d (want %d)", env.FormatVersion, FormatVersion)
	}
	return &env, nil
}
