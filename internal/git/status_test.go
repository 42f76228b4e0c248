package git

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus_ClassifiesEachKind(t *testing.T) {
	out := strings.Join([]string{
		" M a.py",
		"?? b.py",
		"A  new.go",
		" D gone.go",
		"R  old.go -> renamed.go",
	}, "\n")

	status := ParseStatus(out)
	assert.Equal(t, []string{"a.py"}, status.Modified)
	assert.Equal(t, []string{"b.py"}, status.Untracked)
	assert.Equal(t, []string{"new.go"}, status.Added)
	assert.Equal(t, []string{"gone.go"}, status.Deleted)
	assert.Equal(t, []string{"old.go -> renamed.go"}, status.Renamed)
	assert.Equal(t, 5, status.Total())
}

func TestParseStatus_ModifyWinsOverAdd(t *testing.T) {
	// A file staged as added then edited again reports "AM"; the modify
	// letter takes precedence.
	status := ParseStatus("AM partial.go\nMM both.go")
	assert.Equal(t, []string{"partial.go", "both.go"}, status.Modified)
	assert.Empty(t, status.Added)
}

func TestParseStatus_SkipsMalformedLines(t *testing.T) {
	out := strings.Join([]string{
		" M good.go",
		"M",    // no path
		"??",   // no path
		"   ",  // whitespace only
		"",     // blank
		"?? ok.txt",
	}, "\n")

	status := ParseStatus(out)
	assert.Equal(t, []string{"good.go"}, status.Modified)
	assert.Equal(t, []string{"ok.txt"}, status.Untracked)
	assert.Equal(t, 2, status.Total())
}

func TestParseStatus_SkipsUnclassifiedCodes(t *testing.T) {
	// Copies and ignored entries carry codes outside the classified set.
	status := ParseStatus("C  copied.go\n!! vendor/")
	assert.Equal(t, 0, status.Total())
}

func TestParseStatus_PathsWithSpaces(t *testing.T) {
	status := ParseStatus("?? my notes.txt\n M dir/some file.go")
	assert.Equal(t, []string{"my notes.txt"}, status.Untracked)
	assert.Equal(t, []string{"dir/some file.go"}, status.Modified)
}

func TestParseStatus_EmptyOutput(t *testing.T) {
	assert.True(t, ParseStatus("").IsClean())
	assert.True(t, ParseStatus("\n\n").IsClean())
}

func TestParseStatus_CountMatchesWellFormedLines(t *testing.T) {
	lines := []string{
		" M one.go",
		"A  two.go",
		" D three.go",
		"?? four.go",
		"R  five.go -> six.go",
		"garbage-without-path",
	}
	status := ParseStatus(strings.Join(lines, "\n"))
	assert.Equal(t, len(lines)-1, status.Total())
}
