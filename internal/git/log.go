package git

import (
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Log returns up to limit commits reachable from HEAD, newest first. A
// commit is on remote when a remote-tracking branch contains it.
func (c *CLI) Log(limit int) ([]Commit, error) {
	// Reopened on every call: go-git caches packfiles and refs that git
	// rewrites underneath us.
	r, err := gogit.PlainOpenWithOptions(c.repo.Root, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrBackend, c.repo.Root, err)
	}

	head, err := r.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: resolve HEAD: %v", ErrBackend, err)
	}

	iter, err := r.Log(&gogit.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("%w: log: %v", ErrBackend, err)
	}
	defer iter.Close()

	var objects []*object.Commit
	err = iter.ForEach(func(commit *object.Commit) error {
		if limit > 0 && len(objects) >= limit {
			return storer.ErrStop
		}
		objects = append(objects, commit)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: log: %v", ErrBackend, err)
	}

	tips, err := remoteTips(r)
	if err != nil {
		return nil, err
	}

	commits := make([]Commit, 0, len(objects))
	onRemote := false
	for _, obj := range objects {
		if !onRemote {
			onRemote = containedIn(obj, tips)
		}
		message := strings.TrimRight(obj.Message, "\n")
		commits = append(commits, Commit{
			Hash:     obj.Hash.String(),
			Subject:  firstLine(message),
			Message:  message,
			Author:   obj.Author.Name,
			When:     obj.Author.When,
			OnRemote: onRemote,
		})
	}
	return commits, nil
}

// remoteTips returns the commits remote-tracking branches point to.
func remoteTips(r *gogit.Repository) ([]*object.Commit, error) {
	refs, err := r.References()
	if err != nil {
		return nil, fmt.Errorf("%w: references: %v", ErrBackend, err)
	}
	defer refs.Close()

	var tips []*object.Commit
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsRemote() || ref.Type() != plumbing.HashReference {
			return nil
		}
		commit, err := r.CommitObject(ref.Hash())
		if err != nil {
			// Remote refs may point at tags or pruned objects.
			return nil
		}
		tips = append(tips, commit)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: references: %v", ErrBackend, err)
	}
	return tips, nil
}

// containedIn reports whether commit is one of tips or an ancestor of one.
// The log is walked newest first, so once a commit is contained all older
// commits on the same line are too and the caller stops asking.
func containedIn(commit *object.Commit, tips []*object.Commit) bool {
	for _, tip := range tips {
		if tip.Hash == commit.Hash {
			return true
		}
		if ok, err := commit.IsAncestor(tip); err == nil && ok {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
