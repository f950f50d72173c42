package eda

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/kbukum/tabprofile/errors"
	"github.com/kbukum/tabprofile/util"
)

// CollisionPolicy decides what happens when two labels normalize to the
// same string.
type CollisionPolicy string

// Collision policies.
const (
	// CollisionOverwrite keeps both mapping entries; the later column wins
	// in the statistics accumulator.
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionSuffix renames later duplicates to name_2, name_3 and so on.
	CollisionSuffix CollisionPolicy = "suffix"
	// CollisionError fails the run.
	CollisionError CollisionPolicy = "error"
)

// LabelPair is one original → normalized mapping entry.
type LabelPair struct {
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
}

// LabelMapping maps original labels to normalized labels in column order.
type LabelMapping struct {
	pairs []LabelPair
	index map[string]int
}

// NewLabelMapping builds a mapping from pairs in column order. Entries stay
// aligned with columns; Get of a repeated original label returns the last
// entry.
func NewLabelMapping(pairs ...LabelPair) *LabelMapping {
	m := &LabelMapping{pairs: pairs, index: make(map[string]int, len(pairs))}
	for i, p := range pairs {
		m.index[p.Original] = i
	}
	return m
}

// Len returns the number of entries.
func (m *LabelMapping) Len() int { return len(m.pairs) }

// Get returns the normalized label of original.
func (m *LabelMapping) Get(original string) (string, bool) {
	i, ok := m.index[original]
	if !ok {
		return "", false
	}
	return m.pairs[i].Normalized, true
}

// Pairs returns the entries in column order.
func (m *LabelMapping) Pairs() []LabelPair {
	return append([]LabelPair(nil), m.pairs...)
}

// Normalized returns the normalized label of every entry in column order.
// Labels repeat when the mapping holds overwritten collisions.
func (m *LabelMapping) Normalized() []string {
	out := make([]string, len(m.pairs))
	for i, p := range m.pairs {
		out[i] = p.Normalized
	}
	return out
}

// MarshalJSON encodes the mapping as a JSON object in column order.
func (m *LabelMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m.pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Original)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Normalized)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NormalizeLabels maps every label through util.NormalizeLabel and resolves
// collisions with policy. The result has one entry per label.
func NormalizeLabels(labels []string, policy CollisionPolicy) (*LabelMapping, error) {
	pairs := make([]LabelPair, 0, len(labels))
	owner := make(map[string]string, len(labels))

	for _, label := range labels {
		normalized := util.NormalizeLabel(label)
		if first, taken := owner[normalized]; taken {
			switch policy {
			case CollisionError:
				return nil, errors.HeaderCollision(first, label, normalized)
			case CollisionSuffix:
				normalized = nextFree(normalized, owner)
			}
		}
		if _, taken := owner[normalized]; !taken {
			owner[normalized] = label
		}
		pairs = append(pairs, LabelPair{Original: label, Normalized: normalized})
	}
	return NewLabelMapping(pairs...), nil
}

func nextFree(base string, taken map[string]string) string {
	for n := 2; ; n++ {
		candidate := base + "_" + strconv.Itoa(n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
