package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// ListQuery is the input for a filtered FT.SEARCH scan.
type ListQuery struct {
	IndexName string
	Filter    string // query expression, e.g. "@indexed:[0 0]"
	Offset    int
	Limit     int
	// KeysOnly asks for matching keys without fields (NOCONTENT); ReturnFields is ignored.
	KeysOnly     bool
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// For KNN hits Distance is the raw index distance and Score the derived similarity.
type SearchEntry struct {
	Key      string
	Score    float64
	Distance float64
	Fields   map[string]string
}
