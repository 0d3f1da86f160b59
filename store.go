package buildtag

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRefNotFound is returned by RefStore.DeleteTagRef for a missing ref
	ErrRefNotFound = errors.New("ref not found")

	ErrMissingRepository = errors.New("repository is required")
	ErrMissingSHA        = errors.New("commit sha is required")
	ErrMissingToken      = errors.New("token is required")
)

// RefStore is the remote storage of tag refs. Implementations must be safe
// for concurrent use, Runner deletes tags in parallel.
type RefStore interface {
	// ListTagRefs returns the full ref names ("refs/tags/...") of a
	// repository. A repository without tags yields an empty list.
	ListTagRefs(ctx context.Context, repository string) ([]string, error)

	// CreateTagRef points the tag at sha
	CreateTagRef(ctx context.Context, repository, tag, sha string) error

	// DeleteTagRef removes the tag, returning ErrRefNotFound if it is absent
	DeleteTagRef(ctx context.Context, repository, tag string) error
}

// ParseRepository splits an "owner/name" repository identifier
func ParseRepository(repository string) (owner, name string, err error) {
	parts := strings.Split(strings.TrimSuffix(repository, ".git"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/name", repository)
	}
	return parts[0], parts[1], nil
}
