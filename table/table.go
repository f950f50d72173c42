package table

import (
	"fmt"

	"github.com/kbukum/tabprofile/util"
)

// Kind is the analysis category of a column.
type Kind int

const (
	// KindText columns hold strings and booleans.
	KindText Kind = iota
	// KindNumeric columns hold integers or floats.
	KindNumeric
)

// String returns "numeric" or "text".
func (k Kind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "text"
}

// Storage type descriptors reported for each column.
const (
	DtypeInt64   = "int64"
	DtypeFloat64 = "float64"
	DtypeBool    = "bool"
	DtypeObject  = "object"
)

// Column is a named, typed sequence of cells.
type Column struct {
	// Name is the column label.
	Name string
	// Kind is numeric or text.
	Kind Kind
	// Dtype is the storage type descriptor.
	Dtype string

	nulls []bool
	nums  []float64
	strs  []string
}

// NewNumericColumn builds a numeric column. nulls may be nil when no value
// is missing. The dtype is int64 when every value is integral and none is
// missing, float64 otherwise.
func NewNumericColumn(name string, values []float64, nulls []bool) *Column {
	nulls = normalizeMask(nulls, len(values))
	dtype := DtypeInt64
	for i, v := range values {
		if nulls[i] || v != float64(int64(v)) {
			dtype = DtypeFloat64
			break
		}
	}
	if len(values) == 0 {
		dtype = DtypeFloat64
	}
	return &Column{Name: name, Kind: KindNumeric, Dtype: dtype, nulls: nulls, nums: values}
}

// NewTextColumn builds an object column. nulls may be nil when no value is
// missing.
func NewTextColumn(name string, values []string, nulls []bool) *Column {
	return &Column{
		Name: name, Kind: KindText, Dtype: DtypeObject,
		nulls: normalizeMask(nulls, len(values)), strs: values,
	}
}

func normalizeMask(nulls []bool, n int) []bool {
	if len(nulls) == n {
		return nulls
	}
	mask := make([]bool, n)
	copy(mask, nulls)
	return mask
}

// Len returns the number of cells, null or not.
func (c *Column) Len() int { return len(c.nulls) }

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int {
	n := 0
	for _, null := range c.nulls {
		if null {
			n++
		}
	}
	return n
}

// Floats returns the non-null values of a numeric column in row order.
// It returns nil for text columns.
func (c *Column) Floats() []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.nums))
	for i, v := range c.nums {
		if !c.nulls[i] {
			out = append(out, v)
		}
	}
	return out
}

// Texts returns the non-null cells of a text column in row order.
// It returns nil for numeric columns.
func (c *Column) Texts() []string {
	if c.Kind != KindText {
		return nil
	}
	out := make([]string, 0, len(c.strs))
	for i, s := range c.strs {
		if !c.nulls[i] {
			out = append(out, s)
		}
	}
	return out
}

func (c *Column) withName(name string) *Column {
	cp := *c
	cp.Name = name
	return &cp
}

// Table is an immutable list of equally long columns.
type Table struct {
	// Source is the input reference the table was loaded from.
	Source string
	// Checksum is the xxh3 hash of the raw input bytes, zero when unknown.
	Checksum uint64

	columns []*Column
	rows    int
}

// New builds a table from columns of equal length.
func New(columns ...*Column) (*Table, error) {
	t := &Table{columns: columns}
	for i, c := range columns {
		if i == 0 {
			t.rows = c.Len()
			continue
		}
		if c.Len() != t.rows {
			return nil, fmt.Errorf("table: column %q has %d rows, want %d", c.Name, c.Len(), t.rows)
		}
	}
	return t, nil
}

// Labels returns the column labels in column order.
func (t *Table) Labels() []string {
	return util.Map(t.columns, func(c *Column) string { return c.Name })
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.columns) }

// Shape returns (rows, columns).
func (t *Table) Shape() (int, int) { return t.rows, len(t.columns) }

// Column returns the i-th column.
func (t *Table) Column(i int) *Column { return t.columns[i] }

// Columns returns the columns in order. The slice must not be modified.
func (t *Table) Columns() []*Column { return t.columns }

// Lookup returns the first column named name.
func (t *Table) Lookup(name string) (*Column, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Rename returns a table whose i-th column is labelled labels[i]. Cell
// storage is shared with t.
func (t *Table) Rename(labels []string) (*Table, error) {
	if len(labels) != len(t.columns) {
		return nil, fmt.Errorf("table: rename with %d labels for %d columns", len(labels), len(t.columns))
	}
	out := &Table{Source: t.Source, Checksum: t.Checksum, rows: t.rows, columns: make([]*Column, len(t.columns))}
	for i, c := range t.columns {
		out.columns[i] = c.withName(labels[i])
	}
	return out, nil
}

// Project returns a single-column table holding the i-th column.
func (t *Table) Project(i int) (*Table, error) {
	if i < 0 || i >= len(t.columns) {
		return nil, fmt.Errorf("table: column index %d out of range [0,%d)", i, len(t.columns))
	}
	return &Table{Source: t.Source, Checksum: t.Checksum, rows: t.rows, columns: []*Column{t.columns[i]}}, nil
}
