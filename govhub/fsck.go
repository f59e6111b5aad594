// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package govhub

import (
	"fmt"
	"sort"
	"strings"

	"github.com/decred/govhub/records"
)

// FsckError is returned by Fsck when the store is inconsistent.
type FsckError struct {
	Problems []string
}

// Error satisfies the error interface.
func (e FsckError) Error() string {
	return fmt.Sprintf("fsck: %v problems: %v", len(e.Problems),
		strings.Join(e.Problems, "; "))
}

// Fsck verifies the consistency of the store: the label and author indexes
// must match the current snapshots, proposals and RFPs must agree on their
// links, post replies must be indexed under their parent and the member graph
// must be symmetric. A FsckError lists every problem found.
func (g *Govhub) Fsck() error {
	return g.view(func(t *txn) error {
		var problems []string
		report := func(format string, a ...interface{}) {
			problems = append(problems, fmt.Sprintf(format, a...))
		}

		proposals, err := t.proposals()
		if err != nil {
			return err
		}
		rfps, err := t.rfps()
		if err != nil {
			return err
		}
		posts, err := t.posts()
		if err != nil {
			return err
		}
		known, err := t.indexedLabels()
		if err != nil {
			return err
		}

		var (
			byLabelProposals = make(map[string][]uint64)
			byLabelRFPs      = make(map[string][]uint64)
			byLabelPosts     = make(map[string][]uint64)
			byAuthor         = make(map[string][]uint64)
			children         = make(map[records.PostID][]uint64)
			labels           = make(map[string]struct{})
		)
		for _, l := range known {
			labels[l] = struct{}{}
		}

		rfpByID := make(map[records.RFPID]*records.RFP, len(rfps))
		for i := range rfps {
			rfpByID[rfps[i].ID] = &rfps[i]
		}

		for _, p := range proposals {
			for _, l := range p.Snapshot.Labels {
				byLabelProposals[l] = append(byLabelProposals[l], uint64(p.ID))
				labels[l] = struct{}{}
			}
			byAuthor[p.AuthorID] = append(byAuthor[p.AuthorID], uint64(p.ID))

			linked := p.Body().LinkedRFP
			if linked == nil {
				continue
			}
			r, ok := rfpByID[*linked]
			if !ok {
				report("proposal %v links to unknown rfp %v", p.ID, *linked)
				continue
			}
			if !r.Snapshot.LinkedProposals.Has(p.ID) {
				report("rfp %v does not list proposal %v", r.ID, p.ID)
			}
		}
		for _, r := range rfps {
			for _, l := range r.Snapshot.Labels {
				byLabelRFPs[l] = append(byLabelRFPs[l], uint64(r.ID))
				labels[l] = struct{}{}
			}
			for _, pid := range r.Snapshot.LinkedProposals {
				if int(pid) >= len(proposals) {
					report("rfp %v lists unknown proposal %v", r.ID, pid)
					continue
				}
				linked := proposals[pid].Body().LinkedRFP
				if linked == nil || *linked != r.ID {
					report("proposal %v does not link to rfp %v", pid, r.ID)
				}
			}
		}
		for _, p := range posts {
			for _, l := range p.Snapshot.Labels {
				byLabelPosts[l] = append(byLabelPosts[l], uint64(p.ID))
				labels[l] = struct{}{}
			}
			if p.ParentID != nil {
				children[*p.ParentID] = append(children[*p.ParentID],
					uint64(p.ID))
			}
		}

		check := func(name, key string, want []uint64) error {
			got, err := t.index(key)
			if err != nil {
				return err
			}
			if !equalIDs(got, want) {
				report("%v: index %v, want %v", name, got, want)
			}
			return nil
		}
		all := make([]string, 0, len(labels))
		for l := range labels {
			all = append(all, l)
		}
		sort.Strings(all)
		for _, l := range all {
			if err := check("proposal label "+l, keyLabelProposals(l),
				byLabelProposals[l]); err != nil {
				return err
			}
			if err := check("rfp label "+l, keyLabelRFPs(l),
				byLabelRFPs[l]); err != nil {
				return err
			}
			if err := check("post label "+l, keyLabelPosts(l),
				byLabelPosts[l]); err != nil {
				return err
			}
		}
		for author, ids := range byAuthor {
			if err := check("author "+author, keyAuthorProposals(author),
				ids); err != nil {
				return err
			}
		}
		for _, p := range posts {
			if err := check("post children "+p.ID.String(),
				keyPostChildren(p.ID), children[p.ID]); err != nil {
				return err
			}
		}

		members, err := t.members()
		if err != nil {
			return err
		}
		if err := members.Verify(); err != nil {
			report("members: %v", err)
		}

		if len(problems) > 0 {
			return FsckError{Problems: problems}
		}

		log.Infof("Fsck: %v proposals %v rfps %v posts %v labels ok",
			len(proposals), len(rfps), len(posts), len(all))

		return nil
	})
}

// equalIDs compares two id lists ignoring order.
func equalIDs(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]uint64{}, a...)
	y := append([]uint64{}, b...)
	sort.Slice(x, func(i, j int) bool { return x[i] < x[j] })
	sort.Slice(y, func(i, j int) bool { return y[i] < y[j] })
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
