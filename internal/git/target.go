package git

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
)

// InitTarget ensures dir holds a git repository, initializing one when none
// exists, and registers the publish remote on a fresh repository. Remote
// registration failures are ignored so an already-wired target never blocks
// an export. Reports whether a new repository was created.
func InitTarget(dir, remoteURL string) (created bool, err error) {
	repo, err := gogit.PlainOpen(dir)
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		repo, err = gogit.PlainInit(dir, false)
		if err != nil {
			return false, fmt.Errorf("init repository: %w", err)
		}
		created = true
	} else if err != nil {
		return false, fmt.Errorf("open repository: %w", err)
	}

	if created && remoteURL != "" {
		// Ignored on failure: a pre-existing origin is fine, and a broken
		// remote config surfaces at push time with a better message.
		_, _ = repo.CreateRemote(&gitcfg.RemoteConfig{
			Name: "origin",
			URLs: []string{remoteURL},
		})
	}
	return created, nil
}

// RemoteURL returns the first URL of the named remote in dir, or empty when
// the repository or remote is absent.
func RemoteURL(dir, name string) string {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return ""
	}
	remote, err := repo.Remote(name)
	if err != nil {
		return ""
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}
