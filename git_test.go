package buildtag

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"
)

func TestOpenRepository(t *testing.T) {
	t.Run("Subdirectory of a repository", func(t *testing.T) {
		tmpDir := t.TempDir()
		_, err := git.PlainInit(tmpDir, false)
		require.NoError(t, err)

		subDir := filepath.Join(tmpDir, "nested")
		require.NoError(t, os.MkdirAll(subDir, 0o755))

		repo, err := OpenRepository(subDir)
		require.NoError(t, err)
		require.NotNil(t, repo)
	})

	t.Run("Not a repository", func(t *testing.T) {
		_, err := OpenRepository(t.TempDir())
		require.Error(t, err)
	})
}

func TestResolveCommit(t *testing.T) {
	repo, err := testRepoCreate()
	require.NoError(t, err)
	head, err := testRepoCommit(repo, "test.txt")
	require.NoError(t, err)

	sha, err := ResolveCommit(repo, "")
	require.NoError(t, err)
	require.Equal(t, head.String(), sha)

	sha, err = ResolveCommit(repo, "HEAD")
	require.NoError(t, err)
	require.Equal(t, head.String(), sha)

	_, err = ResolveCommit(repo, "does-not-exist")
	require.Error(t, err)
}

func TestGitStore(t *testing.T) {
	ctx := context.Background()

	t.Run("List tags", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		_, err = testRepoWithTags(repo, []string{"auto-v1.0.0-1", "v2.0.0"})
		require.NoError(t, err)

		refs, err := NewGitStore(repo).ListTagRefs(ctx, "")
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"refs/tags/auto-v1.0.0-1", "refs/tags/v2.0.0"}, refs)
	})

	t.Run("List without tags", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		_, err = testRepoCommit(repo, "test.txt")
		require.NoError(t, err)

		refs, err := NewGitStore(repo).ListTagRefs(ctx, "")
		require.NoError(t, err)
		require.Empty(t, refs)
	})

	t.Run("Create tag", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		head, err := testRepoCommit(repo, "test.txt")
		require.NoError(t, err)

		store := NewGitStore(repo)
		require.NoError(t, store.CreateTagRef(ctx, "", "auto-v0.0.1-1", head.String()))

		ref, err := repo.Tag("auto-v0.0.1-1")
		require.NoError(t, err)
		require.Equal(t, head, ref.Hash())

		// same commit again is accepted
		require.NoError(t, store.CreateTagRef(ctx, "", "auto-v0.0.1-1", head.String()))
	})

	t.Run("Create existing tag on another commit", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		_, err = testRepoWithTags(repo, []string{"auto-v0.0.1-1"})
		require.NoError(t, err)
		next, err := testRepoCommit(repo, "next.txt")
		require.NoError(t, err)

		err = NewGitStore(repo).CreateTagRef(ctx, "", "auto-v0.0.1-1", next.String())
		require.Error(t, err)
	})

	t.Run("Create on unknown commit", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		_, err = testRepoCommit(repo, "test.txt")
		require.NoError(t, err)

		err = NewGitStore(repo).CreateTagRef(ctx, "", "auto-v0.0.1-1", plumbing.ZeroHash.String())
		require.Error(t, err)
	})

	t.Run("Delete tag", func(t *testing.T) {
		repo, err := testRepoCreate()
		require.NoError(t, err)
		_, err = testRepoWithTags(repo, []string{"auto-v1.0.0-1", "auto-v1.0.0-2"})
		require.NoError(t, err)

		store := NewGitStore(repo)
		require.NoError(t, store.DeleteTagRef(ctx, "", "auto-v1.0.0-1"))

		refs, err := store.ListTagRefs(ctx, "")
		require.NoError(t, err)
		require.Equal(t, []string{"refs/tags/auto-v1.0.0-2"}, refs)

		err = store.DeleteTagRef(ctx, "", "auto-v1.0.0-1")
		require.ErrorIs(t, err, ErrRefNotFound)
	})
}
