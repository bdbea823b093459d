package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DistanceMetric used by FT.SEARCH vector similarity queries.
type DistanceMetric string

const (
	// DistanceL2 is Euclidean distance.
	DistanceL2 DistanceMetric = "L2"
	// DistanceIP is inner product distance.
	DistanceIP DistanceMetric = "IP"
	// DistanceCosine is cosine distance, in [0, 2].
	DistanceCosine DistanceMetric = "COSINE"
)

// VectorAlgorithm selects the indexing algorithm for vector fields in FT.CREATE.
type VectorAlgorithm string

const (
	// VectorHNSW uses the HNSW algorithm.
	VectorHNSW VectorAlgorithm = "HNSW"
	// VectorFlat uses the FLAT (brute-force) algorithm.
	VectorFlat VectorAlgorithm = "FLAT"
)

// VectorSpec describes a FLOAT32 vector field.
type VectorSpec struct {
	Algorithm VectorAlgorithm // default FLAT
	Dim       int
	Distance  DistanceMetric // default COSINE

	// HNSW only; zero keeps the server default.
	M           int
	EFConstruct int
}

// IndexField is one SCHEMA entry of a hash index: NUMERIC when Vector is nil.
type IndexField struct {
	Name   string // hash field name
	Alias  string // AS alias used in queries
	Vector *VectorSpec
}

// QueryName is how queries refer to the field.
func (f *IndexField) QueryName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// IndexDefinition is an FT index over hashes sharing key prefixes.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if seen[f.QueryName()] {
			return errors.New("duplicate field name: " + f.QueryName())
		}
		seen[f.QueryName()] = true

		if f.Vector != nil && f.Vector.Dim <= 0 {
			return fmt.Errorf("vector field %s requires positive DIM", f.Name)
		}
	}
	return nil
}

// Args renders the FT.CREATE arguments that follow the command name.
func (idx *IndexDefinition) Args() ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	args := []string{idx.Name, "ON", "HASH"}
	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		f := &idx.Fields[i]
		args = append(args, f.Name)
		if f.Alias != "" {
			args = append(args, "AS", f.Alias)
		}
		if f.Vector == nil {
			args = append(args, "NUMERIC")
			continue
		}
		args = append(args, f.Vector.args()...)
	}
	return args, nil
}

// String returns the FT.CREATE command for logs, or the validation error.
func (idx *IndexDefinition) String() string {
	args, err := idx.Args()
	if err != nil {
		return "invalid index " + idx.Name + ": " + err.Error()
	}
	return "FT.CREATE " + strings.Join(args, " ")
}

func (v *VectorSpec) args() []string {
	algo := v.Algorithm
	if algo == "" {
		algo = VectorFlat
	}
	distance := v.Distance
	if distance == "" {
		distance = DistanceCosine
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(v.Dim),
		"DISTANCE_METRIC", string(distance),
	}
	if algo == VectorHNSW {
		if v.M > 0 {
			attrs = append(attrs, "M", strconv.Itoa(v.M))
		}
		if v.EFConstruct > 0 {
			attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(v.EFConstruct))
		}
	}

	out := make([]string, 0, 3+len(attrs))
	out = append(out, "VECTOR", string(algo), strconv.Itoa(len(attrs)))
	return append(out, attrs...)
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
