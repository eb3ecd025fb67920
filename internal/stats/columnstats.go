// Package stats is the per-column and per-table statistics model the
// predicate and aggregate samplers read from: categorical frequencies,
// key samples, numerical percentiles, and raw-string word frequencies.
package stats

import (
	"fmt"
	"sort"

	"defio/internal/core"
)

// ColumnType is the tag discriminating which summary a ColumnStats holds.
type ColumnType string

const (
	Categorical ColumnType = "CATEGORICAL"
	Key         ColumnType = "KEY"
	Numerical   ColumnType = "NUMERICAL"
	RawString   ColumnType = "RAW_STRING"
)

const (
	maxCategoricalValues = 50
	maxKeySampleSize     = 1000
	numPercentiles       = 101
	maxRawStringWords    = 100
)

// ColumnStats is a tagged union over the four statistical classifications
// of a column. Exactly one of the kind-specific fields is populated,
// selected by Type. nan_ratio and num_unique are always present.
type ColumnStats struct {
	Type      ColumnType `json:"column_type"`
	NanRatio  float64    `json:"nan_ratio"`
	NumUnique int        `json:"num_unique"`

	// Categorical: value -> observed frequency, capped at maxCategoricalValues.
	CategoricalFreq map[string]int `json:"categorical_freq,omitempty"`

	// Key: a bounded sample of observed non-null values.
	KeySample []string `json:"key_sample,omitempty"`

	// Numerical.
	Min         float64   `json:"min,omitempty"`
	Max         float64   `json:"max,omitempty"`
	Mean        float64   `json:"mean,omitempty"`
	Percentiles []float64 `json:"percentiles,omitempty"`

	// RawString: word -> observed row-frequency, capped at maxRawStringWords.
	WordFreq map[string]int `json:"word_freq,omitempty"`
}

// NewCategorical builds a Categorical ColumnStats, capping freq at the 50
// most-frequent values.
func NewCategorical(nanRatio float64, numUnique int, freq map[string]int) ColumnStats {
	return ColumnStats{
		Type:            Categorical,
		NanRatio:        nanRatio,
		NumUnique:       numUnique,
		CategoricalFreq: capByFrequency(freq, maxCategoricalValues),
	}
}

// NewKey builds a Key ColumnStats, capping the sample at ~1000 values
// (truncation, deterministic on the input order).
func NewKey(nanRatio float64, numUnique int, sample []string) ColumnStats {
	if len(sample) > maxKeySampleSize {
		sample = sample[:maxKeySampleSize]
	}
	return ColumnStats{
		Type:      Key,
		NanRatio:  nanRatio,
		NumUnique: numUnique,
		KeySample: append([]string(nil), sample...),
	}
}

// NewNumerical builds a Numerical ColumnStats. percentiles must have
// exactly 101 entries (index 0..100, nearest-interpolation), one per
// percentile point.
func NewNumerical(nanRatio float64, numUnique int, min, max, mean float64, percentiles []float64) (ColumnStats, error) {
	if len(percentiles) != numPercentiles {
		return ColumnStats{}, fmt.Errorf("stats: numerical column needs %d percentiles, got %d", numPercentiles, len(percentiles))
	}
	return ColumnStats{
		Type:        Numerical,
		NanRatio:    nanRatio,
		NumUnique:   numUnique,
		Min:         min,
		Max:         max,
		Mean:        mean,
		Percentiles: append([]float64(nil), percentiles...),
	}, nil
}

// NewRawString builds a RawString ColumnStats, capping word frequencies
// at the 100 most-frequent words.
func NewRawString(nanRatio float64, numUnique int, wordFreq map[string]int) ColumnStats {
	return ColumnStats{
		Type:      RawString,
		NanRatio:  nanRatio,
		NumUnique: numUnique,
		WordFreq:  capByFrequency(wordFreq, maxRawStringWords),
	}
}

// IsEmpty reports whether the stats container carries no values to
// sample from (e.g. a column that is entirely NULL). The predicate
// sampler returns no predicate in this case.
func (cs ColumnStats) IsEmpty() bool {
	switch cs.Type {
	case Categorical:
		return len(cs.CategoricalFreq) == 0
	case Key:
		return len(cs.KeySample) == 0
	case Numerical:
		return len(cs.Percentiles) == 0
	case RawString:
		return len(cs.WordFreq) == 0
	default:
		return true
	}
}

func capByFrequency(freq map[string]int, limit int) map[string]int {
	if len(freq) <= limit {
		out := make(map[string]int, len(freq))
		for k, v := range freq {
			out[k] = v
		}
		return out
	}

	keys := make([]string, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})

	out := make(map[string]int, limit)
	for _, k := range keys[:limit] {
		out[k] = freq[k]
	}
	return out
}

// Infer picks the statistical classification for a column given its
// constraints and the shape of its observed data, per the inference
// rule: integer/string primary or foreign keys become Key; low-
// cardinality integer/string columns become Categorical; floats are
// always Numerical; booleans are always Categorical; everything else
// falls through to Numerical (numeric) or RawString (string).
func Infer(column core.Column, numUnique, rowCount int) ColumnType {
	isKeyLike := column.Constraint.IsPrimaryKey || column.Constraint.IsForeignKey
	lowCardinality := numUnique <= 50 || (rowCount > 0 && float64(numUnique)/float64(rowCount) <= 0.01)

	switch column.DataType {
	case core.Integer:
		if isKeyLike {
			return Key
		}
		if lowCardinality {
			return Categorical
		}
		return Numerical
	case core.Float:
		return Numerical
	case core.String:
		if isKeyLike {
			return Key
		}
		if lowCardinality {
			return Categorical
		}
		return RawString
	case core.Boolean:
		return Categorical
	default:
		return Numerical
	}
}

// LegalFor reports whether a caller-supplied ColumnType override is
// legal for the given data type (e.g. RawString on an Integer column is
// illegal).
func LegalFor(dtype core.DataType, ct ColumnType) bool {
	switch dtype {
	case core.Integer:
		return ct == Key || ct == Categorical || ct == Numerical
	case core.Float:
		return ct == Numerical
	case core.String:
		return ct == Key || ct == Categorical || ct == RawString
	case core.Boolean:
		return ct == Categorical
	default:
		return false
	}
}
