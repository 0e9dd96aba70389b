package entity

// EmbeddingVector is the numeric representation of a text produced by the
// embedding model. Its dimension is fixed by the model.
type EmbeddingVector []float32

// RetrievedDocument is a search hit built per request from the index.
type RetrievedDocument struct {
	ID       string
	Content  string
	FileName string
	Path     string
	Score    float64
}

// IndexedDocument is the shape written into the search backend by ingestion.
type IndexedDocument struct {
	ID        string          `json:"-"`
	FileName  string          `json:"file_name"`
	Path      string          `json:"path"`
	Content   string          `json:"content"`
	Embedding EmbeddingVector `json:"embedding"`
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	Indexed   int
	Skipped   int
	Failed    int
	Truncated int
}
