// Package forge talks to GitHub for the missing-remote recovery: when a
// push fails because the target repository does not exist, the dev flow can
// create it and retry.
package forge

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub API for repository creation.
type Client struct {
	client *github.Client
}

// NewFromEnv creates a client from the GITHUB_TOKEN environment variable.
// Returns nil when no token is set; callers treat a nil client as "recovery
// unavailable".
func NewFromEnv() *Client {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil
	}
	return New(token)
}

// New creates a client authenticated with the given token.
func New(token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &Client{client: github.NewClient(tc)}
}

// ParseRepoURL parses a GitHub remote URL into owner and repo. SSH
// (git@github.com:owner/repo) and HTTPS forms are accepted; other hosts are
// rejected.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	repoURL = strings.TrimSuffix(repoURL, ".git")

	if strings.HasPrefix(repoURL, "git@github.com:") {
		parts := strings.Split(strings.TrimPrefix(repoURL, "git@github.com:"), "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return "", "", fmt.Errorf("invalid SSH repository URL format")
		}
		return parts[0], parts[1], nil
	}

	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Host != "github.com" {
		return "", "", fmt.Errorf("not a github.com remote: %s", repoURL)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository URL format")
	}
	return parts[0], parts[1], nil
}

// Exists reports whether the repository is visible to the token.
func (c *Client) Exists(ctx context.Context, owner, repo string) (bool, error) {
	_, resp, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return false, nil
		}
		return false, fmt.Errorf("failed to check repository: %w", err)
	}
	return true, nil
}

// Create creates the repository, under the authenticated user or under the
// owner organization when they differ.
func (c *Client) Create(ctx context.Context, owner, repo string) error {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to identify token user: %w", err)
	}

	org := ""
	if !strings.EqualFold(user.GetLogin(), owner) {
		org = owner
	}

	_, _, err = c.client.Repositories.Create(ctx, org, &github.Repository{
		Name:    github.String(repo),
		Private: github.Bool(false),
	})
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	return nil
}

// CreateFromURL parses the remote URL and creates the repository when it is
// missing. Satisfies the pipeline's RepoCreator.
func (c *Client) CreateFromURL(ctx context.Context, remoteURL string) error {
	owner, repo, err := ParseRepoURL(remoteURL)
	if err != nil {
		return err
	}
	exists, err := c.Exists(ctx, owner, repo)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.Create(ctx, owner, repo)
}
