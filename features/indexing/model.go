package indexing

import "strings"

// RepositoryFile is one file of a connected repository, supplied per indexing
// run by the repository-fetching collaborator. It is never persisted here.
type RepositoryFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Record is one embedded file ready for upsert into the vector index.
type Record struct {
	DocID    string
	TenantID string
	Path     string
	Content  string
	Vector   []float32
}

// DocID derives the record key from the tenant and file path. The derivation
// is deterministic so re-indexing the same file overwrites its prior record
// instead of duplicating it.
func DocID(tenantID, path string) string {
	return tenantID + "-" + strings.ReplaceAll(path, "/", "_")
}
