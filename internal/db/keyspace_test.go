package db

import "testing"

func TestNewKeyspace_Default(t *testing.T) {
	ks, err := NewKeyspace("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ks.Prefix() != DefaultKeyPrefix {
		t.Errorf("prefix = %q, want %q", ks.Prefix(), DefaultKeyPrefix)
	}
}

func TestKeyspace_Keys(t *testing.T) {
	ks, err := NewKeyspace("app:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"story", ks.Story("abc"), "app:story:abc"},
		{"story prefix", ks.StoryPrefix(), "app:story:"},
		{"order", ks.Order(), "app:stories:order"},
		{"sequence", ks.Sequence(), "app:stories:seq"},
		{"index", ks.Index(), "app:stories:idx"},
		{"embedding cache", ks.EmbeddingCache("ff00"), "app:emb:ff00"},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Errorf("%s = %q, want %q", tc.name, tc.got, tc.want)
		}
	}
	if id := ks.StoryID("app:story:abc"); id != "abc" {
		t.Errorf("StoryID = %q, want abc", id)
	}
}

func TestNewKeyspace_Invalid(t *testing.T) {
	if _, err := NewKeyspace("bad prefix"); err == nil {
		t.Fatal("expected error for prefix with spaces")
	}
}
