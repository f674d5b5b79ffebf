// Package identity builds in-memory lookup indexes over one scan's observed
// files so catalog rows can be matched against them without rescanning.
package identity

import "mediacat/internal/scanner"

// Index answers "where did this catalog row's file go?" questions during a
// reconciliation pass.
//
// Scanned files are indexed by path, by content hash, and by filename. A
// file matched to a catalog row is claimed; claimed files drop out of hash
// and name candidacy so two rows can never resolve to the same file.
// Candidate lists preserve walk order, which keeps repeated runs over the
// same tree deterministic.
type Index struct {
	files  []scanner.File
	byPath map[string]int
	byHash map[string][]int
	byName map[string][]int

	claimed []bool
}

// Build constructs an index over scanned files in walk order.
func Build(files []scanner.File) *Index {
	idx := &Index{
		files:   files,
		byPath:  make(map[string]int, len(files)),
		byHash:  make(map[string][]int),
		byName:  make(map[string][]int),
		claimed: make([]bool, len(files)),
	}
	for i, file := range files {
		idx.byPath[file.Path] = i
		if file.Hash != "" {
			idx.byHash[file.Hash] = append(idx.byHash[file.Hash], i)
		}
		idx.byName[file.Filename] = append(idx.byName[file.Filename], i)
	}
	return idx
}

// ClaimPath claims the file at the exact path. Returns nil when no file was
// scanned at that path or it is already claimed.
func (idx *Index) ClaimPath(path string) *scanner.File {
	i, ok := idx.byPath[path]
	if !ok || idx.claimed[i] {
		return nil
	}
	idx.claimed[i] = true
	return &idx.files[i]
}

// ClaimByHash claims an unclaimed file with the given hash. When several
// files share the hash, one whose filename matches wins; otherwise the first
// in walk order.
func (idx *Index) ClaimByHash(hash, filename string) *scanner.File {
	if hash == "" {
		return nil
	}
	fallback := -1
	for _, i := range idx.byHash[hash] {
		if idx.claimed[i] {
			continue
		}
		if idx.files[i].Filename == filename {
			idx.claimed[i] = true
			return &idx.files[i]
		}
		if fallback < 0 {
			fallback = i
		}
	}
	if fallback < 0 {
		return nil
	}
	idx.claimed[fallback] = true
	return &idx.files[fallback]
}

// ClaimByName claims the first unclaimed file with the same filename and
// exact size. Size must match; a same-named file of different size is a
// different file.
func (idx *Index) ClaimByName(filename string, size int64) *scanner.File {
	for _, i := range idx.byName[filename] {
		if idx.claimed[i] || idx.files[i].Size != size {
			continue
		}
		idx.claimed[i] = true
		return &idx.files[i]
	}
	return nil
}

// Unclaimed returns, in walk order, every scanned file no catalog row
// matched. After the row pass these are the new files to insert.
func (idx *Index) Unclaimed() []scanner.File {
	var rest []scanner.File
	for i, file := range idx.files {
		if !idx.claimed[i] {
			rest = append(rest, file)
		}
	}
	return rest
}
