package git

import (
	"strings"

	"github.com/kilupskalvis/shipout/internal/models"
)

// ParseStatus classifies `git status --porcelain` output into a RepoStatus.
//
// Each line splits at its first whitespace run into a status code and a
// path. A code containing M, A, D or R classifies the path (checked in that
// order, so a partially staged "AM" counts as modified); the exact code "??"
// marks an untracked path. Lines that do not split into code and path are
// skipped — a malformed line must not abort the scan.
func ParseStatus(out string) *models.RepoStatus {
	status := &models.RepoStatus{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		code, path, ok := splitStatusLine(line)
		if !ok {
			continue
		}
		switch {
		case strings.Contains(code, "M"):
			status.Modified = append(status.Modified, path)
		case strings.Contains(code, "A"):
			status.Added = append(status.Added, path)
		case strings.Contains(code, "D"):
			status.Deleted = append(status.Deleted, path)
		case strings.Contains(code, "R"):
			status.Renamed = append(status.Renamed, path)
		case code == "??":
			status.Untracked = append(status.Untracked, path)
		}
	}
	return status
}

// splitStatusLine cuts a porcelain line at the first whitespace run.
// Renamed entries keep their combined "old -> new" form as the path.
func splitStatusLine(line string) (code, path string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	i := strings.IndexAny(trimmed, " \t")
	if i < 0 {
		return "", "", false
	}
	code = trimmed[:i]
	path = strings.TrimLeft(trimmed[i:], " \t")
	if path == "" {
		return "", "", false
	}
	return code, path, true
}
