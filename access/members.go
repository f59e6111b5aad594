// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package access

import (
	"encoding/json"
	"fmt"

	v1 "github.com/decred/govhub/api/v1"
)

const memberMetadataV0 = "V0"

// MemberMetadata contains the permissions and the graph edges of a member.
// The parent/child relation is symmetric across the MembersList: if A lists B
// as a child then B lists A as a parent.
type MemberMetadata struct {
	Description string
	Permissions map[Rule]ActionSet
	Children    MemberSet
	Parents     MemberSet
}

type memberMetadataV0JSON struct {
	Version     string             `json:"member_metadata_version"`
	Description string             `json:"description"`
	Permissions map[Rule]ActionSet `json:"permissions"`
	Children    MemberSet          `json:"children"`
	Parents     MemberSet          `json:"parents"`
}

// MarshalJSON satisfies the json.Marshaler interface.
func (m MemberMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(memberMetadataV0JSON{
		Version:     memberMetadataV0,
		Description: m.Description,
		Permissions: m.Permissions,
		Children:    m.Children,
		Parents:     m.Parents,
	})
}

// UnmarshalJSON satisfies the json.Unmarshaler interface.
func (m *MemberMetadata) UnmarshalJSON(b []byte) error {
	var r memberMetadataV0JSON
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	if r.Version != memberMetadataV0 {
		return v1.NewUserErr(v1.ErrCodeSchemaMismatch,
			"member metadata version %q", r.Version)
	}
	*m = MemberMetadata{
		Description: r.Description,
		Permissions: r.Permissions,
		Children:    r.Children,
		Parents:     r.Parents,
	}
	m.init()
	return nil
}

// init replaces nil maps with empty ones.
func (m *MemberMetadata) init() {
	if m.Permissions == nil {
		m.Permissions = make(map[Rule]ActionSet)
	}
	if m.Children == nil {
		m.Children = make(MemberSet)
	}
	if m.Parents == nil {
		m.Parents = make(MemberSet)
	}
}

func (m MemberMetadata) clone() MemberMetadata {
	c := MemberMetadata{
		Description: m.Description,
		Permissions: make(map[Rule]ActionSet, len(m.Permissions)),
		Children:    m.Children.clone(),
		Parents:     m.Parents.clone(),
	}
	for r, as := range m.Permissions {
		c.Permissions[r] = NewActionSet(as.List()...)
	}
	return c
}

// MembersList is the permission graph. Members are the keys; edges are
// stored on both ends.
type MembersList map[Member]MemberMetadata

// Clone returns a deep copy of the list.
func (l MembersList) Clone() MembersList {
	c := make(MembersList, len(l))
	for m, md := range l {
		c[m] = md.clone()
	}
	return c
}

// Members returns the sorted members of the list.
func (l MembersList) Members() []Member {
	members := make([]Member, 0, len(l))
	for m := range l {
		members = append(members, m)
	}
	sortMembers(members)
	return members
}

// AddMember adds a member to the graph and records the reciprocal edge on
// every declared child and parent. Every edge is validated before the graph
// is modified.
func (l MembersList) AddMember(member Member, md MemberMetadata) error {
	if _, ok := l[member]; ok {
		return v1.NewUserErr(v1.ErrCodeMemberExists, "%v", member)
	}

	md = md.clone()
	md.init()
	for c := range md.Children {
		cmd, ok := l[c]
		if !ok {
			return v1.NewUserErr(v1.ErrCodeNotFound,
				"child %v of %v", c, member)
		}
		if cmd.Parents.Has(member) {
			return v1.NewUserErr(v1.ErrCodeInvariantViolation,
				"child %v already lists %v as parent", c, member)
		}
	}
	for p := range md.Parents {
		pmd, ok := l[p]
		if !ok {
			return v1.NewUserErr(v1.ErrCodeNotFound,
				"parent %v of %v", p, member)
		}
		if pmd.Children.Has(member) {
			return v1.NewUserErr(v1.ErrCodeInvariantViolation,
				"parent %v already lists %v as child", p, member)
		}
	}

	for c := range md.Children {
		cmd := l[c]
		cmd.init()
		cmd.Parents[member] = struct{}{}
		l[c] = cmd
	}
	for p := range md.Parents {
		pmd := l[p]
		pmd.init()
		pmd.Children[member] = struct{}{}
		l[p] = pmd
	}
	l[member] = md

	log.Debugf("Member added: %v", member)

	return nil
}

// RemoveMember removes a member from the graph along with the reciprocal edges
// on its children and parents. A declared edge that is missing on the other
// end is reported as an invariant violation and the graph is left untouched.
func (l MembersList) RemoveMember(member Member) error {
	md, ok := l[member]
	if !ok {
		return v1.NewUserErr(v1.ErrCodeNotFound, "member %v", member)
	}

	for c := range md.Children {
		cmd, ok := l[c]
		if !ok || !cmd.Parents.Has(member) {
			return v1.NewUserErr(v1.ErrCodeInvariantViolation,
				"child %v does not list %v as parent", c, member)
		}
	}
	for p := range md.Parents {
		pmd, ok := l[p]
		if !ok || !pmd.Children.Has(member) {
			return v1.NewUserErr(v1.ErrCodeInvariantViolation,
				"parent %v does not list %v as child", p, member)
		}
	}

	for c := range md.Children {
		delete(l[c].Parents, member)
	}
	for p := range md.Parents {
		delete(l[p].Children, member)
	}
	delete(l, member)

	log.Debugf("Member removed: %v", member)

	return nil
}

// EditMember replaces the metadata of a member. The edit is transactional:
// the graph is restored to its prior state when the new metadata can not be
// applied.
func (l MembersList) EditMember(member Member, md MemberMetadata) error {
	backup := l.Clone()
	if err := l.RemoveMember(member); err != nil {
		return err
	}
	if err := l.AddMember(member, md); err != nil {
		for m := range l {
			delete(l, m)
		}
		for m, bmd := range backup {
			l[m] = bmd
		}
		return err
	}
	return nil
}

// CheckPermissions returns the action types the account holds for the labels.
// Permissions are aggregated from the account and every member reachable by
// following parent edges. An account that is not in the graph holds no
// permissions.
func (l MembersList) CheckPermissions(account string, labels []string) ActionSet {
	actions := make(ActionSet)
	start := Account(account)
	if _, ok := l[start]; !ok {
		return actions
	}

	visited := NewMemberSet(start)
	queue := []Member{start}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]

		md, ok := l[m]
		if !ok {
			continue
		}
		for r, as := range md.Permissions {
			if !r.AppliesToAny(labels) {
				continue
			}
			for a := range as {
				actions[a] = struct{}{}
			}
		}
		for p := range md.Parents {
			if visited.Has(p) {
				continue
			}
			visited[p] = struct{}{}
			queue = append(queue, p)
		}
	}

	return actions
}

// RootMembers returns the sorted members that have no parents.
func (l MembersList) RootMembers() []Member {
	roots := make([]Member, 0)
	for m, md := range l {
		if len(md.Parents) == 0 {
			roots = append(roots, m)
		}
	}
	sortMembers(roots)
	return roots
}

// Moderators returns the children of the moderators team. An empty set is
// returned when the team does not exist.
func (l MembersList) Moderators() MemberSet {
	md, ok := l[Team(TeamModerators)]
	if !ok {
		return make(MemberSet)
	}
	return md.Children.clone()
}

// IsModerator returns whether the account is a direct child of the moderators
// team.
func (l MembersList) IsModerator(account string) bool {
	md, ok := l[Team(TeamModerators)]
	if !ok {
		return false
	}
	return md.Children.Has(Account(account))
}

// Verify checks that every edge of the graph is recorded on both ends and
// that every edge points to a member of the graph.
func (l MembersList) Verify() error {
	for m, md := range l {
		for c := range md.Children {
			cmd, ok := l[c]
			if !ok {
				return fmt.Errorf("%v: child %v not found", m, c)
			}
			if !cmd.Parents.Has(m) {
				return fmt.Errorf("%v: child %v does not list parent", m, c)
			}
		}
		for p := range md.Parents {
			pmd, ok := l[p]
			if !ok {
				return fmt.Errorf("%v: parent %v not found", m, p)
			}
			if !pmd.Children.Has(m) {
				return fmt.Errorf("%v: parent %v does not list child", m, p)
			}
		}
	}
	return nil
}

// IsAllowedToUseLabels returns whether the account may attach or detach the
// provided labels. Labels that no rule restricts may be used by anyone.
func IsAllowedToUseLabels(rules RulesList, members MembersList, account string, labels []string) bool {
	for _, l := range rules.FindRestricted(labels) {
		if !members.CheckPermissions(account, []string{l}).Has(ActionUseLabels) {
			return false
		}
	}
	return true
}
