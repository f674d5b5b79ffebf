package catalog

import (
	"path/filepath"
	"strings"
	"time"
)

// Entry represents one known media file persisted in SQLite.
//
// Path, Size, Hash, ModTime, and SourceFolder are identity and provenance
// fields owned by the reconciliation engine. Title, Description, Tags, and
// Stars are user-owned: the engine sets them at row creation and never
// touches them afterwards, so they survive moves and refreshes.
type Entry struct {
	ID           int64
	Path         string
	Filename     string
	Size         int64
	Hash         string
	ModTime      *time.Time
	Title        string
	Description  string
	Tags         string
	Stars        int
	SourceFolder string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastSeenAt   *time.Time
}

// Medium describes where a folder's storage lives.
type Medium string

const (
	MediumLocal   Medium = "local"
	MediumNetwork Medium = "network"
)

// ParseMedium converts a string into a known Medium.
func ParseMedium(value string) (Medium, bool) {
	normalized := Medium(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case MediumLocal, MediumNetwork:
		return normalized, true
	}
	return "", false
}

// Folder is a configured root the scanner may walk.
//
// A folder is online when it is active and its root is currently reachable.
// Inactive folders are never walked; active-but-unreachable folders are
// "configured but offline" and shield their rows from deletion.
type Folder struct {
	ID        int64
	Path      string
	Medium    Medium
	Device    string
	Active    bool
	CreatedAt time.Time
}

// Contains reports whether path lies under the folder root.
func (f Folder) Contains(path string) bool {
	root := filepath.Clean(f.Path)
	cleaned := filepath.Clean(path)
	if cleaned == root {
		return true
	}
	return strings.HasPrefix(cleaned, root+string(filepath.Separator))
}

// MutationKind labels a catalog row mutation.
type MutationKind string

const (
	MutationInsert MutationKind = "insert"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

// Mutation is one pending catalog write. Insert and Update carry an Entry;
// Delete carries the target row id. Update writes identity and provenance
// columns only, leaving user-owned fields untouched by construction.
type Mutation struct {
	Kind    MutationKind
	Entry   *Entry
	EntryID int64
}

// Insert builds an insert mutation for a new entry.
func Insert(entry *Entry) Mutation {
	return Mutation{Kind: MutationInsert, Entry: entry}
}

// Update builds an identity/provenance update mutation for an existing entry.
func Update(entry *Entry) Mutation {
	return Mutation{Kind: MutationUpdate, Entry: entry, EntryID: entry.ID}
}

// Delete builds a delete mutation for a row id.
func Delete(id int64) Mutation {
	return Mutation{Kind: MutationDelete, EntryID: id}
}

// DatabaseHealth captures diagnostic information about the catalog database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	SchemaVersion    int
	IntegrityCheck   bool
	TotalEntries     int
	TotalFolders     int
	Error            string
}

// FolderStats aggregates per-folder entry counts for diagnostics.
type FolderStats struct {
	Folder  Folder
	Entries int
	Online  bool
}
