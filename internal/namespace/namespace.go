// Package namespace derives stable document identifiers from content.
//
// A namespace is the lowercase hex SHA-256 of a document's raw bytes.
// Identical content always maps to the same namespace regardless of
// filename or path, which is what makes re-ingestion idempotent and lets
// queries be scoped to specific documents.
package namespace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// FromBytes returns the namespace for the given content.
func FromBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// FromReader returns the namespace for all content read from r.
func FromReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FromFile returns the namespace for the file's content. The file is
// streamed through the hash rather than read into memory.
func FromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	ns, err := FromReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return ns, nil
}

// Key builds the storage key for one chunk record: "<namespace>:<index>".
func Key(ns string, index int) string {
	return ns + ":" + strconv.Itoa(index)
}

// ParseKey splits a storage key back into namespace and chunk index.
func ParseKey(key string) (ns string, index int, err error) {
	i := strings.LastIndex(key, ":")
	if i <= 0 || i == len(key)-1 {
		return "", 0, fmt.Errorf("malformed record key %q", key)
	}
	index, err = strconv.Atoi(key[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("malformed record key %q: %w", key, err)
	}
	return key[:i], index, nil
}
