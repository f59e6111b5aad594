// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package govhub implements the governance content store. It records
// proposals, requests for proposals (RFPs) and discussion posts along with
// their edit history, enforces the label based access rules and drives
// proposals and RFPs through their timelines.
//
// Every exported method is a single call that either commits all of its
// changes or none of them. Calls are serialized.
package govhub

import (
	"sync"

	"github.com/decred/govhub/access"
	v1 "github.com/decred/govhub/api/v1"
	"github.com/decred/govhub/notify"
	"github.com/decred/govhub/records"
	"github.com/decred/govhub/store"
	"github.com/decred/govhub/timeline"
	"github.com/pkg/errors"
)

// Env provides the identity of the caller and the current time.
type Env interface {
	// Caller returns the account that invoked the call.
	Caller() string

	// Self returns the privileged system account.
	Self() string

	// Now returns the current time as a unix nanosecond timestamp.
	Now() int64

	// BlockHeight returns the current block height.
	BlockHeight() uint64
}

// StaticEnv is an Env that returns fixed values.
type StaticEnv struct {
	CallerID  string
	SelfID    string
	Timestamp int64
	Height    uint64
}

var _ Env = (*StaticEnv)(nil)

// Caller satisfies the Env interface.
func (e *StaticEnv) Caller() string { return e.CallerID }

// Self satisfies the Env interface.
func (e *StaticEnv) Self() string { return e.SelfID }

// Now satisfies the Env interface.
func (e *StaticEnv) Now() int64 { return e.Timestamp }

// BlockHeight satisfies the Env interface.
func (e *StaticEnv) BlockHeight() uint64 { return e.Height }

// Govhub is the governance content store.
type Govhub struct {
	sync.Mutex
	kv       store.BlobKV
	env      Env
	notifier notify.Notifier
	encrypt  bool
}

// New returns a new Govhub that persists to the provided store. Blobs are
// encrypted at rest when encrypt is set and the store supports it.
func New(kv store.BlobKV, env Env, notifier notify.Notifier, encrypt bool) *Govhub {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Govhub{
		kv:       kv,
		env:      env,
		notifier: notifier,
		encrypt:  encrypt,
	}
}

// update runs a mutating call. The changes staged by fn are committed in a
// single store transaction. Nothing is written when fn returns an error.
// Notifications are dispatched after the commit.
func (g *Govhub) update(fn func(t *txn) error) error {
	g.Lock()
	defer g.Unlock()

	tx, cancel, err := g.kv.Tx()
	if err != nil {
		return err
	}
	defer cancel()

	t := newTxn(tx, tx, g.encrypt)
	if err := fn(t); err != nil {
		return userError(err)
	}
	if err := t.commit(); err != nil {
		return err
	}

	g.dispatch(t.notifications)

	return nil
}

// view runs a read only call.
func (g *Govhub) view(fn func(t *txn) error) error {
	g.Lock()
	defer g.Unlock()

	return userError(fn(newTxn(g.kv, nil, g.encrypt)))
}

// dispatch delivers notifications. Failures are logged and never returned
// since the changes have already been committed.
func (g *Govhub) dispatch(ns []notify.Notification) {
	for _, n := range ns {
		if len(n.Subscribers) == 0 {
			continue
		}
		log.Debugf("Notify %v %v %v: %v", n.Type, n.EntityKind, n.EntityID,
			n.Subscribers)
		if err := g.notifier.Notify(n); err != nil {
			log.Errorf("Notify %v %v %v: %v", n.Type, n.EntityKind,
				n.EntityID, err)
		}
	}
}

// userError converts a timeline transition error into an invalid transition
// user error. All other errors are returned unchanged.
func userError(err error) error {
	var te timeline.TransitionError
	if errors.As(err, &te) {
		return v1.UserErr{
			Code:    v1.ErrCodeInvalidTransition,
			Context: te.Error(),
		}
	}
	return err
}

// isPrivileged returns whether the account is the system account or a
// moderator.
func (g *Govhub) isPrivileged(members access.MembersList, account string) bool {
	return account == g.env.Self() || members.IsModerator(account)
}

// requirePrivilege returns the member graph when the caller is privileged.
func (g *Govhub) requirePrivilege(t *txn) (access.MembersList, error) {
	members, err := t.members()
	if err != nil {
		return nil, err
	}
	caller := g.env.Caller()
	if !g.isPrivileged(members, caller) {
		return nil, v1.NewUserErr(v1.ErrCodePermissionDenied,
			"%v is not a moderator", caller)
	}
	return members, nil
}

// allowedToUseLabels returns whether the account may attach or detach the
// labels. Privileged accounts may use any label.
func (g *Govhub) allowedToUseLabels(t *txn, account string, labels []string) (bool, error) {
	if len(labels) == 0 {
		return true, nil
	}
	members, err := t.members()
	if err != nil {
		return false, err
	}
	if g.isPrivileged(members, account) {
		return true, nil
	}
	rules, err := t.rules()
	if err != nil {
		return false, err
	}
	return access.IsAllowedToUseLabels(rules, members, account, labels), nil
}

// checkLabelDelta verifies that the editor may add and remove the labels
// that differ between the two label sets.
func (g *Govhub) checkLabelDelta(t *txn, editor string, from, to []string) error {
	added, removed := records.LabelsDiff(from, to)
	delta := append(added, removed...)
	ok, err := g.allowedToUseLabels(t, editor, delta)
	if err != nil {
		return err
	}
	if !ok {
		return v1.NewUserErr(v1.ErrCodePermissionDenied,
			"%v may not use labels %v", editor, delta)
	}
	return nil
}

// reindexLabels moves the id between the label index entries of the provided
// key function according to the label delta.
func (t *txn) reindexLabels(key func(string) string, id uint64, from, to []string) error {
	added, removed := records.LabelsDiff(from, to)
	for _, l := range removed {
		if err := t.indexRemove(key(l), id); err != nil {
			return err
		}
	}
	for _, l := range added {
		if err := t.indexAdd(key(l), id); err != nil {
			return err
		}
	}
	return t.trackLabels(added)
}
