// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package notify delivers the notifications that govhub produces after a
// state change has been committed.
package notify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/decred/govhub/events"
	"github.com/decred/govhub/mail"
	"github.com/decred/govhub/util"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Type is the type of a notification.
type Type string

const (
	TypeProposalAdded  Type = "proposal-added"
	TypeProposalEdited Type = "proposal-edited"
	TypeRFPAdded       Type = "rfp-added"
	TypeRFPEdited      Type = "rfp-edited"
	TypePostAdded      Type = "post-added"
	TypePostEdited     Type = "post-edited"
	TypeLikeAdded      Type = "like-added"
)

// Types contains every notification type.
var Types = []Type{
	TypeProposalAdded,
	TypeProposalEdited,
	TypeRFPAdded,
	TypeRFPEdited,
	TypePostAdded,
	TypePostEdited,
	TypeLikeAdded,
}

// Entity kinds.
const (
	EntityProposal = "proposal"
	EntityRFP      = "rfp"
	EntityPost     = "post"
)

// Notification describes a committed change and the accounts that are
// subscribed to it.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	Type        Type      `json:"type"`
	EntityKind  string    `json:"entity_kind"`
	EntityID    uint64    `json:"entity_id"`
	Actor       string    `json:"actor"`
	Timestamp   int64     `json:"timestamp"`
	Subscribers []string  `json:"subscribers"`
}

// New returns a new notification with a random id.
func New(t Type, kind string, id uint64, actor string, timestamp int64, subscribers []string) Notification {
	return Notification{
		ID:          uuid.New(),
		Type:        t,
		EntityKind:  kind,
		EntityID:    id,
		Actor:       actor,
		Timestamp:   timestamp,
		Subscribers: subscribers,
	}
}

// Subscribers returns the sorted list of accounts that are mentioned in the
// provided texts plus the provided accounts. Empty accounts and the actor are
// excluded.
func Subscribers(actor string, texts []string, accounts ...string) []string {
	all := make([]string, 0, len(accounts))
	for _, v := range texts {
		all = append(all, util.ParseMentions(v)...)
	}
	all = append(all, accounts...)

	subs := make([]string, 0, len(all))
	for _, v := range util.Dedup(all) {
		if v == "" || v == actor {
			continue
		}
		subs = append(subs, v)
	}
	sort.Strings(subs)
	return subs
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(n Notification) error
}

// Nop is a Notifier that drops every notification.
type Nop struct{}

// Notify satisfies the Notifier interface.
func (Nop) Notify(Notification) error {
	return nil
}

// EventNotifier emits notifications on an event manager. The event type is
// the notification type.
type EventNotifier struct {
	events *events.Manager
}

// NewEventNotifier returns a new EventNotifier.
func NewEventNotifier(m *events.Manager) *EventNotifier {
	return &EventNotifier{
		events: m,
	}
}

// Notify satisfies the Notifier interface.
func (e *EventNotifier) Notify(n Notification) error {
	e.events.Emit(string(n.Type), n)
	return nil
}

// MailNotifier emails notifications to the subscribed accounts. The email
// address of an account is account@domain.
type MailNotifier struct {
	mailer mail.Mailer
	domain string
}

// NewMailNotifier returns a new MailNotifier.
func NewMailNotifier(m mail.Mailer, domain string) *MailNotifier {
	return &MailNotifier{
		mailer: m,
		domain: domain,
	}
}

// Notify satisfies the Notifier interface.
func (m *MailNotifier) Notify(n Notification) error {
	if !m.mailer.IsEnabled() || len(n.Subscribers) == 0 {
		return nil
	}
	recipients := make(map[string]string, len(n.Subscribers))
	for _, v := range n.Subscribers {
		recipients[v] = v + "@" + m.domain
	}
	subject, body := Render(n)

	log.Debugf("Mail %v %v %v to %v", n.Type, n.EntityKind, n.EntityID,
		len(recipients))

	return m.mailer.SendToAccounts(subject, body, recipients)
}

// Render returns the email subject and body of a notification.
func Render(n Notification) (string, string) {
	what := strings.ReplaceAll(string(n.Type), "-", " ")
	subject := fmt.Sprintf("govhub: %v %v", n.EntityKind, what)
	body := fmt.Sprintf("%v: %v #%v by @%v\n", what, n.EntityKind,
		n.EntityID, n.Actor)
	return subject, body
}

// Multi fans a notification out to several notifiers. Every notifier is
// invoked even when an earlier one fails.
type Multi []Notifier

// Notify satisfies the Notifier interface.
func (m Multi) Notify(n Notification) error {
	var errs []string
	for _, v := range m {
		if err := v.Notify(n); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.Errorf("notify %v: %v", n.ID,
			strings.Join(errs, "; "))
	}
	return nil
}
