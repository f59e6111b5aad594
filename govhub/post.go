// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package govhub

import (
	"github.com/decred/govhub/access"
	v1 "github.com/decred/govhub/api/v1"
	"github.com/decred/govhub/notify"
	"github.com/decred/govhub/records"
)

// AddPost adds a new discussion post authored by the caller. Root posts have
// a nil parent.
func (g *Govhub) AddPost(parent *records.PostID, body records.PostBody, labels []string) (records.PostID, error) {
	var id records.PostID
	err := g.update(func(t *txn) error {
		author := g.env.Caller()
		if err := body.Validate(); err != nil {
			return err
		}
		var subs []string
		if parent != nil {
			pp, err := t.post(*parent)
			if err != nil {
				return err
			}
			subs = append(subs, pp.AuthorID)
		}
		labels = records.NormalizeLabels(labels)
		if err := records.ValidateLabels(labels); err != nil {
			return err
		}
		if err := g.checkLabelDelta(t, author, nil, labels); err != nil {
			return err
		}

		n, err := t.nextID(keyPostCount)
		if err != nil {
			return err
		}
		id = records.PostID(n)
		p := records.Post{
			ID:       id,
			AuthorID: author,
			ParentID: parent,
			Snapshot: records.PostSnapshot{
				EditorID:  author,
				Timestamp: g.env.Now(),
				Labels:    labels,
				Body:      records.NewVersionedPostBody(body),
			},
		}
		if err := t.putPost(&p); err != nil {
			return err
		}
		if err := t.reindexLabels(keyLabelPosts, n, nil, labels); err != nil {
			return err
		}
		if parent != nil {
			if err := t.indexAdd(keyPostChildren(*parent), n); err != nil {
				return err
			}
		}

		log.Infof("Post %v added by %v", id, author)

		t.notify(notify.New(notify.TypePostAdded, notify.EntityPost,
			n, author, g.env.Now(),
			notify.Subscribers(author, []string{body.Description},
				subs...)))

		return nil
	})
	return id, err
}

// EditPost replaces the body and labels of a post. The author, privileged
// accounts and holders of the edit post action on the post labels may edit.
func (g *Govhub) EditPost(id records.PostID, body records.PostBody, labels []string) error {
	return g.update(func(t *txn) error {
		editor := g.env.Caller()
		p, err := t.post(id)
		if err != nil {
			return err
		}
		members, err := t.members()
		if err != nil {
			return err
		}
		if editor != p.AuthorID && !g.isPrivileged(members, editor) &&
			!members.CheckPermissions(editor, p.Snapshot.Labels).
				Has(access.ActionEditPost) {
			return v1.NewUserErr(v1.ErrCodePermissionDenied,
				"%v may not edit post %v", editor, id)
		}
		if err := body.Validate(); err != nil {
			return err
		}
		labels = records.NormalizeLabels(labels)
		if err := records.ValidateLabels(labels); err != nil {
			return err
		}
		err = g.checkLabelDelta(t, editor, p.Snapshot.Labels, labels)
		if err != nil {
			return err
		}

		oldLabels := p.Snapshot.Labels
		p.Push(records.PostSnapshot{
			EditorID:  editor,
			Timestamp: g.env.Now(),
			Labels:    labels,
			Body:      records.NewVersionedPostBody(body),
		})
		if err := t.putPost(p); err != nil {
			return err
		}
		err = t.reindexLabels(keyLabelPosts, uint64(id), oldLabels, labels)
		if err != nil {
			return err
		}

		log.Infof("Post %v edited by %v", id, editor)

		t.notify(notify.New(notify.TypePostEdited, notify.EntityPost,
			uint64(id), editor, g.env.Now(),
			notify.Subscribers(editor, []string{body.Description})))

		return nil
	})
}

// AddLike records a like of the caller on a post. Liking a post twice has
// no effect.
func (g *Govhub) AddLike(id records.PostID) error {
	return g.update(func(t *txn) error {
		caller := g.env.Caller()
		p, err := t.post(id)
		if err != nil {
			return err
		}
		if p.LikedBy(caller) {
			return nil
		}
		p.Likes = append(p.Likes, records.Like{
			AuthorID:  caller,
			Timestamp: g.env.Now(),
		})
		if err := t.putPost(p); err != nil {
			return err
		}

		t.notify(notify.New(notify.TypeLikeAdded, notify.EntityPost,
			uint64(id), caller, g.env.Now(),
			notify.Subscribers(caller, nil, p.AuthorID)))

		return nil
	})
}

// Post returns a post.
func (g *Govhub) Post(id records.PostID) (*records.Post, error) {
	var p *records.Post
	err := g.view(func(t *txn) error {
		var err error
		p, err = t.post(id)
		return err
	})
	return p, err
}

// PostChildren returns the ids of the direct replies to a post.
func (g *Govhub) PostChildren(id records.PostID) ([]records.PostID, error) {
	var ids []uint64
	err := g.view(func(t *txn) error {
		if _, err := t.post(id); err != nil {
			return err
		}
		var err error
		ids, err = t.index(keyPostChildren(id))
		return err
	})
	return toPostIDs(ids), err
}

// PostIDsByLabel returns the ids of the posts that currently carry the
// label.
func (g *Govhub) PostIDsByLabel(label string) ([]records.PostID, error) {
	var ids []uint64
	err := g.view(func(t *txn) error {
		var err error
		ids, err = t.index(keyLabelPosts(label))
		return err
	})
	return toPostIDs(ids), err
}

func toPostIDs(ids []uint64) []records.PostID {
	r := make([]records.PostID, 0, len(ids))
	for _, v := range ids {
		r = append(r, records.PostID(v))
	}
	return r
}
