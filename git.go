package buildtag

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// OpenRepository opens a Git repository at the specified path
func OpenRepository(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
}

// ResolveCommit resolves a commitish such as "HEAD" to a commit sha
func ResolveCommit(repo *git.Repository, commitish string) (string, error) {
	if commitish == "" {
		commitish = "HEAD"
	}

	revision, err := repo.ResolveRevision(plumbing.Revision(commitish))
	if err != nil {
		return "", fmt.Errorf("resolving commitish %q: %w", commitish, err)
	}

	commit, err := repo.CommitObject(*revision)
	if err != nil {
		return "", fmt.Errorf("getting commit object: %w", err)
	}

	return commit.Hash.String(), nil
}

// GitStore implements RefStore on a local repository. The repository
// argument of its methods is ignored. go-git storers are not safe for
// concurrent use, so every call holds mu.
type GitStore struct {
	mu   sync.Mutex
	repo *git.Repository
}

func NewGitStore(repo *git.Repository) *GitStore {
	return &GitStore{repo: repo}
}

func (s *GitStore) ListTagRefs(_ context.Context, _ string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags, err := s.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var refs []string
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		refs = append(refs, ref.Name().String())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return refs, nil
}

func (s *GitStore) CreateTagRef(_ context.Context, _ string, tag, sha string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := plumbing.NewHash(sha)
	if _, err := s.repo.CommitObject(hash); err != nil {
		return fmt.Errorf("failed to create tag %s: getting commit %s: %w", tag, sha, err)
	}

	_, err := s.repo.CreateTag(tag, hash, nil)
	if errors.Is(err, git.ErrTagExists) {
		// recreating a tag on the same commit is a no-op
		existing, refErr := s.repo.Tag(tag)
		if refErr == nil && existing.Hash() == hash {
			return nil
		}
	}
	if err != nil {
		return fmt.Errorf("failed to create tag %s: %w", tag, err)
	}

	return nil
}

func (s *GitStore) DeleteTagRef(_ context.Context, _ string, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.repo.DeleteTag(tag)
	if errors.Is(err, git.ErrTagNotFound) {
		return fmt.Errorf("deleting tag %s: %w", tag, ErrRefNotFound)
	}
	if err != nil {
		return fmt.Errorf("deleting tag %s: %w", tag, err)
	}
	return nil
}
