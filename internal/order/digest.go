package order

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/gowebpki/jcs"
)

type digestEntry struct {
	ID      int64   `json:"id"`
	DocType DocType `json:"doc_type"`
}

// StateDigest returns the SHA-256 hex digest of the RFC 8785 canonical JSON of the (id, type)
// pairs of docs in ascending id order. Clients compare digests to detect that the document set
// of an order has changed without downloading it.
func StateDigest(docs []Document) (string, error) {
	entries := make([]digestEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, digestEntry{ID: d.ID, DocType: d.DocType})
	}
	slices.SortStableFunc(entries, func(a, b digestEntry) int { return cmp.Compare(a.ID, b.ID) })

	raw, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode document list: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize document list: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
