package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"docdelta/internal/codebase"
)

// SnapshotID computes a content hash of a snapshot's graded objects.
// Two parses of the same tree yield the same ID even though they are
// distinct snapshots.
// Uses length-prefixed encoding to avoid delimiter ambiguity.
// Format per object: ${len}:${fullname}${len}:${intScore}${len}:${grade}
func SnapshotID(snap *codebase.Snapshot) string {
	var builder strings.Builder

	// Objects() is sorted by fullname
	for _, o := range snap.Objects() {
		writeField(&builder, o.Fullname)
		writeField(&builder, strconv.Itoa(o.IntScore()))
		writeField(&builder, string(o.Grade))
	}

	hash := sha256.Sum256([]byte(builder.String()))
	return hex.EncodeToString(hash[:])
}

func writeField(b *strings.Builder, field string) {
	b.WriteString(strconv.Itoa(len(field)))
	b.WriteByte(':')
	b.WriteString(field)
}
