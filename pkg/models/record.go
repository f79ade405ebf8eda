package models

// CorpusRecord is one stored chat message eligible for chain building.
// EventID is assigned by the upstream platform and is the primary key;
// AuthorID groups records by writer and backs the secondary index.
type CorpusRecord struct {
	EventID string `json:"event_id"`
	// AuthorID is an opaque identity id (the platform manages meaning).
	AuthorID string `json:"author_id,omitempty"`
	Content  string `json:"content"`
	// TS is the insertion timestamp (ns); it orders the author index.
	TS int64 `json:"ts,omitempty"`
	// IndexKey records where the author-index entry for this record lives
	// so deletes can remove both keys without a scan.
	IndexKey string `json:"index_key,omitempty"`
}
