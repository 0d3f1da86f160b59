package buildtag

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Request describes one versioning run
type Request struct {
	// Repository is the "owner/name" identifier passed to the store
	Repository string

	// SHA is the commit the new tag points at
	SHA string

	Policy Policy

	// DryRun computes the outputs without creating or deleting tags
	DryRun bool
}

// Outcome is the result of a run
type Outcome struct {
	Result

	DryRun  bool     `json:"dry_run,omitempty"`
	Created bool     `json:"created"`
	Deleted []string `json:"deleted,omitempty"`
}

// Runner applies derived versions to a RefStore
type Runner struct {
	Store  RefStore
	Logger *zap.SugaredLogger

	// Now defaults to time.Now
	Now func() time.Time
}

// Run fetches the existing tags, derives the next version, creates the new
// tag and, once creation succeeded, deletes superseded tags on a best effort
// basis.
func (r *Runner) Run(ctx context.Context, req Request) (*Outcome, error) {
	if req.Repository == "" {
		return nil, ErrMissingRepository
	}
	if req.SHA == "" {
		return nil, ErrMissingSHA
	}

	log := r.logger()
	policy := req.Policy.normalized()

	log.Infow("checking tags", "repository", req.Repository, "prefix", policy.Prefix)
	refs, err := r.Store.ListTagRefs(ctx, req.Repository)
	if err != nil {
		return nil, fmt.Errorf("fetching tags: %w", err)
	}

	sel := SelectScoped(refs, policy.Prefix)
	log.Infow("tags found", "total", len(refs), "matching", len(sel.All))

	result := derive(sel, policy, r.now())
	log.Infow("derived version",
		"version", result.Version,
		"build", result.BuildNumber,
		"new_tag", result.NewTag,
		"current_tag", result.CurrentTag,
		"old_tag", result.OldTag,
	)

	outcome := &Outcome{Result: result, DryRun: req.DryRun}
	stale := staleTags(sel, result)

	if req.DryRun {
		if result.NewTag != "" {
			log.Infof("[dry-run] would create tag: %s", result.NewTag)
		}
		if result.CurrentTag != "" {
			log.Infof("[dry-run] would keep tag: %s", result.CurrentTag)
		}
		if result.OldTag != "" {
			for _, tag := range stale {
				log.Infof("[dry-run] would delete old tag: %s", tag)
			}
		}
		return outcome, nil
	}

	if result.NewTag == "" {
		log.Infow("no change requested, leaving tags untouched")
		return outcome, nil
	}

	if err := r.Store.CreateTagRef(ctx, req.Repository, result.NewTag, req.SHA); err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}
	outcome.Created = true
	log.Infow("created tag", "tag", result.NewTag, "sha", req.SHA)

	if result.OldTag != "" {
		outcome.Deleted = r.prune(ctx, req.Repository, stale)
	}

	return outcome, nil
}

// prune deletes tags concurrently. Failures are logged and skipped.
func (r *Runner) prune(ctx context.Context, repository string, tags []string) []string {
	log := r.logger()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		deleted []string
	)

	for _, tag := range tags {
		wg.Add(1)
		go func(tag string) {
			defer wg.Done()

			err := r.Store.DeleteTagRef(ctx, repository, tag)
			switch {
			case errors.Is(err, ErrRefNotFound):
				log.Warnw("old tag already gone", "tag", tag)
			case err != nil:
				log.Warnw("could not delete tag", "tag", tag, "error", err)
			default:
				log.Infow("deleted old tag", "tag", tag)
				mu.Lock()
				deleted = append(deleted, tag)
				mu.Unlock()
			}
		}(tag)
	}

	wg.Wait()
	sort.Strings(deleted)
	return deleted
}

// staleTags lists the selected tags other than the new and current one
func staleTags(sel Selection, result Result) []string {
	var stale []string
	for _, record := range sel.All {
		if record.Full == result.NewTag || record.Full == result.CurrentTag {
			continue
		}
		stale = append(stale, record.Full)
	}
	return stale
}

func (r *Runner) logger() *zap.SugaredLogger {
	if r.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return r.Logger
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}
