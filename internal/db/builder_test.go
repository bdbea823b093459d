package db

import (
	"slices"
	"strings"
	"testing"
)

func mustBuild(t *testing.T, b *IndexBuilder) *IndexDefinition {
	t.Helper()
	def, err := b.Build()
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	return def
}

func storyIndex(t *testing.T) *IndexDefinition {
	t.Helper()
	return mustBuild(t, NewIndex("storyline:stories:idx").
		Prefix("storyline:story:").
		Numeric("created_on").
		Numeric("indexed").
		Vector("embedding", VectorSpec{
			Algorithm: VectorHNSW, Dim: 1536, Distance: DistanceCosine, M: 16, EFConstruct: 200,
		}).As("vector"))
}

func TestIndexBuilder_StoryIndex(t *testing.T) {
	idx := storyIndex(t)

	if len(idx.Fields) != 3 {
		t.Fatalf("fields count = %d, want 3", len(idx.Fields))
	}
	if idx.Fields[0].Name != "created_on" || idx.Fields[0].Vector != nil {
		t.Errorf("field[0] = %+v, want created_on NUMERIC", idx.Fields[0])
	}
	f := idx.Fields[2]
	if f.Name != "embedding" || f.QueryName() != "vector" {
		t.Errorf("vector field = %q AS %q", f.Name, f.QueryName())
	}
	if f.Vector.Dim != 1536 || f.Vector.M != 16 || f.Vector.EFConstruct != 200 {
		t.Errorf("vector spec = %+v", f.Vector)
	}
}

func TestIndexDefinition_Args(t *testing.T) {
	args, err := storyIndex(t).Args()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"storyline:stories:idx", "ON", "HASH", "PREFIX", "1", "storyline:story:",
		"SCHEMA",
		"created_on", "NUMERIC",
		"indexed", "NUMERIC",
		"embedding", "AS", "vector", "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32", "DIM", "1536", "DISTANCE_METRIC", "COSINE",
		"M", "16", "EF_CONSTRUCTION", "200",
	}
	if !slices.Equal(args, want) {
		t.Errorf("Args() =\n%v\nwant\n%v", args, want)
	}
}

func TestIndexDefinition_ArgsFlatDefaults(t *testing.T) {
	idx := mustBuild(t, NewIndex("vec-idx").
		Prefix("emb:").
		Vector("embedding", VectorSpec{Dim: 8, M: 32}))

	got := idx.String()
	// FLAT ignores HNSW knobs
	want := "FT.CREATE vec-idx ON HASH PREFIX 1 emb: SCHEMA embedding VECTOR FLAT 6 TYPE FLOAT32 DIM 8 DISTANCE_METRIC COSINE"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestIndexBuilder_AsWithoutFields(t *testing.T) {
	b := NewIndex("idx").As("ignored")
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error: alias without fields must not create a field")
	}
}

func TestIndexBuilder_BuildCopies(t *testing.T) {
	b := NewIndex("idx").Numeric("a")
	first := mustBuild(t, b)
	b.Numeric("b")
	if len(first.Fields) != 1 {
		t.Errorf("built definition changed after further builder calls: %d fields", len(first.Fields))
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name: "empty name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("").Numeric("x").Build()
			},
			wantErr: "index name is required",
		},
		{
			name: "no fields",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Build()
			},
			wantErr: "at least one field",
		},
		{
			name: "empty field name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Numeric("").Build()
			},
			wantErr: "name is required",
		},
		{
			name: "vector without dim",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Vector("v", VectorSpec{}).Build()
			},
			wantErr: "positive DIM",
		},
		{
			name: "invalid characters",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx with spaces").Numeric("x").Build()
			},
			wantErr: "invalid characters",
		},
		{
			name: "duplicate alias",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Numeric("a").As("x").Numeric("x").Build()
			},
			wantErr: "duplicate field name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_StringInvalid(t *testing.T) {
	idx := &IndexDefinition{Name: "idx"}
	if !strings.HasPrefix(idx.String(), "invalid index idx") {
		t.Errorf("String() = %q", idx.String())
	}
}
