// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package govhub

import (
	"github.com/decred/govhub/access"
)

// SetRestrictedRules adds or replaces restricted label rules.
func (g *Govhub) SetRestrictedRules(rules access.RulesList) error {
	return g.update(func(t *txn) error {
		if _, err := g.requirePrivilege(t); err != nil {
			return err
		}
		current, err := t.rules()
		if err != nil {
			return err
		}
		current.Set(rules)

		log.Infof("Restricted rules set: %v", rules.Rules())

		return t.putRules(current)
	})
}

// UnsetRestrictedRules removes restricted label rules.
func (g *Govhub) UnsetRestrictedRules(rules []access.Rule) error {
	return g.update(func(t *txn) error {
		if _, err := g.requirePrivilege(t); err != nil {
			return err
		}
		current, err := t.rules()
		if err != nil {
			return err
		}
		current.Unset(rules)

		log.Infof("Restricted rules unset: %v", rules)

		return t.putRules(current)
	})
}

// editMembers applies fn to the member graph and saves it. The caller must
// be privileged.
func (g *Govhub) editMembers(fn func(access.MembersList) error) error {
	return g.update(func(t *txn) error {
		members, err := g.requirePrivilege(t)
		if err != nil {
			return err
		}
		if err := fn(members); err != nil {
			return err
		}
		return t.putMembers(members)
	})
}

// AddMember adds a member to the member graph.
func (g *Govhub) AddMember(member access.Member, md access.MemberMetadata) error {
	return g.editMembers(func(l access.MembersList) error {
		return l.AddMember(member, md)
	})
}

// EditMember replaces the metadata of a member.
func (g *Govhub) EditMember(member access.Member, md access.MemberMetadata) error {
	return g.editMembers(func(l access.MembersList) error {
		return l.EditMember(member, md)
	})
}

// RemoveMember removes a member from the member graph.
func (g *Govhub) RemoveMember(member access.Member) error {
	return g.editMembers(func(l access.MembersList) error {
		return l.RemoveMember(member)
	})
}

// AccessControlInfo returns the restricted label rules and the member graph.
func (g *Govhub) AccessControlInfo() (access.RulesList, access.MembersList, error) {
	var (
		rules   access.RulesList
		members access.MembersList
	)
	err := g.view(func(t *txn) error {
		var err error
		rules, err = t.rules()
		if err != nil {
			return err
		}
		members, err = t.members()
		return err
	})
	return rules, members, err
}

// RootMembers returns the members that have no parents.
func (g *Govhub) RootMembers() ([]access.Member, error) {
	var roots []access.Member
	err := g.view(func(t *txn) error {
		members, err := t.members()
		if err != nil {
			return err
		}
		roots = members.RootMembers()
		return nil
	})
	return roots, err
}

// CheckPermissions returns the action types that the account holds for the
// labels.
func (g *Govhub) CheckPermissions(account string, labels []string) (access.ActionSet, error) {
	var actions access.ActionSet
	err := g.view(func(t *txn) error {
		members, err := t.members()
		if err != nil {
			return err
		}
		actions = members.CheckPermissions(account, labels)
		return nil
	})
	return actions, err
}

// IsAllowedToUseLabels returns whether the account may attach or detach the
// labels.
func (g *Govhub) IsAllowedToUseLabels(account string, labels []string) (bool, error) {
	var ok bool
	err := g.view(func(t *txn) error {
		var err error
		ok, err = g.allowedToUseLabels(t, account, labels)
		return err
	})
	return ok, err
}
