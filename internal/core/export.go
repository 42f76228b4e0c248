package core

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kilupskalvis/shipout/internal/git"
)

// ExportOptions configures an export operation.
type ExportOptions struct {
	// Ref is the revision to export, resolved in the source repository.
	Ref string
	// TargetPath is the directory that receives the filtered tree.
	TargetPath string
	// RemoteURL is registered as origin when the target repository is
	// first initialized. Empty skips registration.
	RemoteURL string
}

// ExportResult contains the outcome of an export operation.
type ExportResult struct {
	// Commit is the hash Ref resolved to.
	Commit string
	// Initialized reports whether a fresh repository was created in the
	// target directory.
	Initialized bool
	// Extracted counts the file entries written from the archive.
	Extracted int
	// Notes collects benign per-entry extraction problems. Files the
	// export filter excludes show up here, not as errors.
	Notes []string
}

// ExportProgress is called as the export advances.
type ExportProgress func(format string, args ...any)

// Export materializes a filtered snapshot of ref from the source repository
// into the target directory: resolve, init-if-needed, wipe, extract.
// After a successful call the target holds exactly the filtered tree of ref
// plus its git metadata.
func Export(ctx context.Context, source git.ClientInterface, opts ExportOptions, progress ExportProgress) (*ExportResult, error) {
	if progress == nil {
		progress = func(string, ...any) {}
	}
	if opts.Ref == "" {
		opts.Ref = "HEAD"
	}

	commit, err := source.ResolveRef(ctx, opts.Ref)
	if err != nil {
		return nil, err
	}
	result := &ExportResult{Commit: commit}
	progress("Exporting from %s (commit %.8s)", opts.Ref, commit)

	if err := os.MkdirAll(opts.TargetPath, 0755); err != nil {
		return nil, fmt.Errorf("create target directory: %w", err)
	}

	created, err := git.InitTarget(opts.TargetPath, opts.RemoteURL)
	if err != nil {
		return nil, err
	}
	result.Initialized = created
	if created {
		progress("Initialized new git repository in %s", opts.TargetPath)
	} else {
		progress("Using existing git repository")
	}

	progress("Cleaning existing files (preserving .git)...")
	if err := cleanTarget(opts.TargetPath); err != nil {
		return nil, err
	}

	progress("Creating archive from %s...", opts.Ref)
	archive, err := source.Archive(ctx, opts.Ref)
	if err != nil {
		return nil, err
	}

	result.Extracted, result.Notes = extractTar(archive, opts.TargetPath)
	for _, note := range result.Notes {
		progress("Note: %s", note)
	}
	return result, nil
}

// cleanTarget removes every entry in dir except the git metadata directory.
func cleanTarget(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read target directory: %w", err)
	}
	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// extractTar unpacks a tar byte stream into dir. Per-entry problems are
// collected as notes rather than raised: the export filter legitimately
// produces archives whose entries reference excluded content.
func extractTar(archive []byte, dir string) (extracted int, notes []string) {
	tr := tar.NewReader(bytes.NewReader(archive))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return extracted, notes
		}
		if err != nil {
			notes = append(notes, fmt.Sprintf("archive read stopped: %v", err))
			return extracted, notes
		}

		name := filepath.FromSlash(hdr.Name)
		if !filepath.IsLocal(name) {
			notes = append(notes, fmt.Sprintf("skipped non-local path %q", hdr.Name))
			continue
		}
		dest := filepath.Join(dir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, headerMode(hdr, 0755)); err != nil {
				notes = append(notes, fmt.Sprintf("%s: %v", hdr.Name, err))
			}
		case tar.TypeReg:
			if err := writeFile(dest, tr, headerMode(hdr, 0644)); err != nil {
				notes = append(notes, fmt.Sprintf("%s: %v", hdr.Name, err))
				continue
			}
			extracted++
		case tar.TypeSymlink:
			if err := os.Symlink(hdr.Linkname, dest); err != nil {
				notes = append(notes, fmt.Sprintf("%s: %v", hdr.Name, err))
			}
		default:
			notes = append(notes, fmt.Sprintf("skipped entry %q (type %c)", hdr.Name, hdr.Typeflag))
		}
	}
}

func writeFile(dest string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func headerMode(hdr *tar.Header, fallback os.FileMode) os.FileMode {
	if hdr.Mode == 0 {
		return fallback
	}
	return os.FileMode(hdr.Mode).Perm()
}
