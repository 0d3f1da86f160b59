package buildtag

import (
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

var testSignature = &object.Signature{
	Name:  "test",
	Email: "test@example.com",
	When:  time.Now(),
}

// testRepoCreate creates a new in-memory git repository for testing
func testRepoCreate() (*git.Repository, error) {
	storage := memory.NewStorage()
	fs := memfs.New()
	return git.Init(storage, fs)
}

// testRepoCommit adds a commit with a single file and returns its hash
func testRepoCommit(repo *git.Repository, filename string) (plumbing.Hash, error) {
	workTree, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	err = writeFile(workTree.Filesystem, filename, "Content for "+filename)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	_, err = workTree.Add(filename)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	return workTree.Commit("Commit for "+filename, &git.CommitOptions{Author: testSignature})
}

// testRepoWithTags creates one commit and points every tag at it
func testRepoWithTags(repo *git.Repository, tags []string) (plumbing.Hash, error) {
	hash, err := testRepoCommit(repo, "tagged.txt")
	if err != nil {
		return plumbing.ZeroHash, err
	}

	for _, tag := range tags {
		if _, err := repo.CreateTag(tag, hash, nil); err != nil {
			return plumbing.ZeroHash, err
		}
	}

	return hash, nil
}

// testTagRefs is the store's view of tag names
func testTagRefs(tags ...string) []string {
	refs := make([]string, 0, len(tags))
	for _, tag := range tags {
		refs = append(refs, tagRefPrefix+tag)
	}
	return refs
}

// writeFile writes content to a file in the given filesystem
func writeFile(fs billy.Filesystem, filename, content string) error {
	file, err := fs.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.Write([]byte(content))
	return err
}
