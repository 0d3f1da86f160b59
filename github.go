package buildtag

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v60/github"
)

// UserAgent identifies API requests made by this tool
const UserAgent = "versioning-action"

// NewGitHubClient returns a client authenticating with token
func NewGitHubClient(token string) *github.Client {
	client := github.NewClient(nil).WithAuthToken(token)
	client.UserAgent = UserAgent
	return client
}

// GitHubStore implements RefStore on the GitHub git refs API
type GitHubStore struct {
	client *github.Client
}

func NewGitHubStore(client *github.Client) *GitHubStore {
	return &GitHubStore{client: client}
}

func (s *GitHubStore) ListTagRefs(ctx context.Context, repository string) ([]string, error) {
	owner, name, err := ParseRepository(repository)
	if err != nil {
		return nil, err
	}

	var refs []string
	opts := &github.ReferenceListOptions{
		Ref:         "tags/",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		page, resp, err := s.client.Git.ListMatchingRefs(ctx, owner, name, opts)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to fetch tags for %s: %s: %w", repository, statusOf(resp), err)
		}
		for _, ref := range page {
			refs = append(refs, ref.GetRef())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return refs, nil
}

func (s *GitHubStore) CreateTagRef(ctx context.Context, repository, tag, sha string) error {
	owner, name, err := ParseRepository(repository)
	if err != nil {
		return err
	}

	ref := &github.Reference{
		Ref:    github.String(tagRefPrefix + tag),
		Object: &github.GitObject{SHA: github.String(sha)},
	}

	_, resp, err := s.client.Git.CreateRef(ctx, owner, name, ref)
	if err != nil {
		return fmt.Errorf("failed to create tag %s: %s: %w", tag, statusOf(resp), err)
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("failed to create tag %s: unexpected %s", tag, statusOf(resp))
	}
	return nil
}

func (s *GitHubStore) DeleteTagRef(ctx context.Context, repository, tag string) error {
	owner, name, err := ParseRepository(repository)
	if err != nil {
		return err
	}

	resp, err := s.client.Git.DeleteRef(ctx, owner, name, "tags/"+tag)
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("deleting tag %s: %w", tag, ErrRefNotFound)
	}
	if err != nil {
		return fmt.Errorf("deleting tag %s: %s: %w", tag, statusOf(resp), err)
	}
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("deleting tag %s: unexpected %s", tag, statusOf(resp))
	}
	return nil
}

func statusOf(resp *github.Response) string {
	if resp == nil || resp.Response == nil {
		return "no response"
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
