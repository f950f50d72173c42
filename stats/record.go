package stats

import (
	"encoding/json"
	"math"
	"strconv"
)

// Record kinds.
const (
	KindNumeric = "numeric"
	KindText    = "text"
	KindError   = "error"
)

// Float is a statistic value. Infinities are written to JSON as the strings
// "Infinity" and "-Infinity".
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// NumericStats are the statistics of a numeric column. A nil field is an
// undefined statistic, e.g. the mean of a column without values.
type NumericStats struct {
	Min    *Float `json:"min"`
	Max    *Float `json:"max"`
	Mean   *Float `json:"mean"`
	Median *Float `json:"median"`
	Std    *Float `json:"std"`
	Q25    *Float `json:"q25"`
	Q75    *Float `json:"q75"`
}

// TextStats are the statistics of a text column with at least one value.
type TextStats struct {
	MostCommon string  `json:"most_common"`
	MinLength  int     `json:"min_length"`
	MaxLength  int     `json:"max_length"`
	AvgLength  float64 `json:"avg_length"`
}

// Record is the result of analyzing one column. NumericStats is set for
// numeric columns, TextStats for text columns with values; both are
// flattened into the JSON object.
type Record struct {
	Kind        string `json:"kind"`
	Dtype       string `json:"dtype"`
	Count       int    `json:"count"`
	NullCount   int    `json:"null_count"`
	UniqueCount int    `json:"unique_count"`

	*NumericStats
	*TextStats

	// Error is set on records of columns whose analysis failed.
	Error string `json:"error,omitempty"`
}

// ErrorRecord is the record kept for a column whose analysis failed.
func ErrorRecord(dtype string, err error) Record {
	return Record{Kind: KindError, Dtype: dtype, Error: err.Error()}
}

// IsNumeric reports whether r describes a numeric column.
func (r Record) IsNumeric() bool { return r.Kind == KindNumeric }

// Failed reports whether r describes a failed analysis.
func (r Record) Failed() bool { return r.Kind == KindError }

func value(v float64) *Float {
	if math.IsNaN(v) {
		return nil
	}
	f := Float(v)
	return &f
}
