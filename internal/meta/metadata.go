// Package meta provides a small validated string map with deterministic JSON
// encoding, used for free-form attributes on accounts and journal entries.
package meta

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
)

// Metadata is a bounded string map.
type Metadata map[string]string

const (
	MaxPairs     = 20
	MaxKeyLen    = 64
	MaxValLen    = 256
	MaxTotalJSON = 4096
)

var (
	errTooManyPairs = errors.New("metadata: too many pairs")
	errBadKey       = errors.New("metadata: key empty or too long")
	errBadValue     = errors.New("metadata: value too long")
	errTooLarge     = errors.New("metadata: exceeds max encoded size")
)

// New copies m into a Metadata, never returning nil.
func New(m map[string]string) Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Clone returns a copy of m.
func (m Metadata) Clone() Metadata { return New(m) }

// Merge copies entries from other into m, overwriting existing keys.
// Oversized keys or values are dropped; call Validate afterwards to detect
// limit violations.
func (m Metadata) Merge(other Metadata) {
	for _, k := range sortedKeys(other) {
		if len(m) >= MaxPairs {
			if _, exists := m[k]; !exists {
				continue
			}
		}
		if len(k) == 0 || len(k) > MaxKeyLen || len(other[k]) > MaxValLen {
			continue
		}
		m[k] = other[k]
	}
}

// Validate checks pair count, key/value lengths, and total encoded size.
func (m Metadata) Validate() error {
	if len(m) > MaxPairs {
		return errTooManyPairs
	}
	for k, v := range m {
		if len(k) == 0 || len(k) > MaxKeyLen {
			return errBadKey
		}
		if len(v) > MaxValLen {
			return errBadValue
		}
	}
	b, err := m.MarshalStableJSON()
	if err != nil {
		return err
	}
	if len(b) > MaxTotalJSON {
		return errTooLarge
	}
	return nil
}

// MarshalStableJSON returns a deterministic encoding with keys sorted.
func (m Metadata) MarshalStableJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	keys := sortedKeys(m)
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, k := range keys {
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(m[k])
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON uses the stable encoding.
func (m Metadata) MarshalJSON() ([]byte, error) { return m.MarshalStableJSON() }

// UnmarshalJSON accepts null as an empty map.
func (m *Metadata) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = Metadata{}
		return nil
	}
	var tmp map[string]string
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*m = New(tmp)
	return nil
}

func sortedKeys(m Metadata) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
