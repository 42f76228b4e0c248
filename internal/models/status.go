package models

import "strings"

// ChangeKind classifies a working-tree change reported by the VCS.
type ChangeKind string

const (
	ChangeModified  ChangeKind = "modified"
	ChangeAdded     ChangeKind = "added"
	ChangeDeleted   ChangeKind = "deleted"
	ChangeRenamed   ChangeKind = "renamed"
	ChangeUntracked ChangeKind = "untracked"
)

// ChangeKinds lists all change kinds in reporting order.
var ChangeKinds = []ChangeKind{
	ChangeModified,
	ChangeAdded,
	ChangeDeleted,
	ChangeRenamed,
	ChangeUntracked,
}

// RepoStatus groups uncommitted paths by change kind. It is derived fresh
// from one status scan and not mutated afterwards.
type RepoStatus struct {
	Modified  []string `json:"modified,omitempty"`
	Added     []string `json:"added,omitempty"`
	Deleted   []string `json:"deleted,omitempty"`
	Renamed   []string `json:"renamed,omitempty"`
	Untracked []string `json:"untracked,omitempty"`
}

// Paths returns the paths recorded under one change kind.
func (s *RepoStatus) Paths(kind ChangeKind) []string {
	switch kind {
	case ChangeModified:
		return s.Modified
	case ChangeAdded:
		return s.Added
	case ChangeDeleted:
		return s.Deleted
	case ChangeRenamed:
		return s.Renamed
	case ChangeUntracked:
		return s.Untracked
	}
	return nil
}

// Total returns the number of recorded paths across all kinds.
func (s *RepoStatus) Total() int {
	n := 0
	for _, kind := range ChangeKinds {
		n += len(s.Paths(kind))
	}
	return n
}

// IsClean reports whether no changes were recorded.
func (s *RepoStatus) IsClean() bool {
	return s.Total() == 0
}

// PathsOutside flattens all recorded paths in reporting order, skipping any
// path whose first segment equals ignoreDir. An empty ignoreDir keeps
// everything.
func (s *RepoStatus) PathsOutside(ignoreDir string) []string {
	var paths []string
	for _, kind := range ChangeKinds {
		for _, p := range s.Paths(kind) {
			if ignoreDir != "" && firstSegment(p) == ignoreDir {
				continue
			}
			paths = append(paths, p)
		}
	}
	return paths
}

// firstSegment returns the leading path segment. Git emits forward slashes
// regardless of platform.
func firstSegment(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}
