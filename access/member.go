// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package access

import (
	"encoding/json"
	"sort"
	"strings"

	v1 "github.com/decred/govhub/api/v1"
)

const (
	// teamPrefix is the prefix that distinguishes a team from an account
	// in the textual encoding of a Member.
	teamPrefix = "team:"

	// TeamModerators is the name of the team whose children are the
	// moderators.
	TeamModerators = "moderators"
)

// MemberKind is the kind of a member of the permission graph.
type MemberKind int

const (
	// MemberAccount is an individual account.
	MemberAccount MemberKind = iota

	// MemberTeam is a named team.
	MemberTeam
)

// Member identifies an account or a team. The textual encoding is the account
// name for accounts and the team name prefixed with "team:" for teams.
type Member struct {
	Kind MemberKind
	Name string
}

// Account returns the member for the provided account name.
func Account(name string) Member {
	return Member{Kind: MemberAccount, Name: name}
}

// Team returns the member for the provided team name.
func Team(name string) Member {
	return Member{Kind: MemberTeam, Name: name}
}

// ParseMember parses the textual encoding of a member.
func ParseMember(s string) (Member, error) {
	if strings.HasPrefix(s, teamPrefix) {
		name := strings.TrimPrefix(s, teamPrefix)
		if name == "" {
			return Member{}, v1.NewUserErr(v1.ErrCodePayloadInvalid,
				"empty team name")
		}
		return Team(name), nil
	}
	if s == "" {
		return Member{}, v1.NewUserErr(v1.ErrCodePayloadInvalid,
			"empty account name")
	}
	return Account(s), nil
}

// String returns the textual encoding of the member.
func (m Member) String() string {
	if m.Kind == MemberTeam {
		return teamPrefix + m.Name
	}
	return m.Name
}

// MarshalText satisfies the encoding.TextMarshaler interface.
func (m Member) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText satisfies the encoding.TextUnmarshaler interface.
func (m *Member) UnmarshalText(b []byte) error {
	p, err := ParseMember(string(b))
	if err != nil {
		return err
	}
	*m = p
	return nil
}

// MemberSet is a set of members. It is encoded as a sorted list.
type MemberSet map[Member]struct{}

// NewMemberSet returns a set containing the provided members.
func NewMemberSet(members ...Member) MemberSet {
	s := make(MemberSet, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Has returns whether the set contains the member.
func (s MemberSet) Has(m Member) bool {
	_, ok := s[m]
	return ok
}

// List returns the members of the set sorted by their textual encoding.
func (s MemberSet) List() []Member {
	l := make([]Member, 0, len(s))
	for m := range s {
		l = append(l, m)
	}
	sortMembers(l)
	return l
}

// MarshalJSON satisfies the json.Marshaler interface.
func (s MemberSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

// UnmarshalJSON satisfies the json.Unmarshaler interface.
func (s *MemberSet) UnmarshalJSON(b []byte) error {
	var l []Member
	if err := json.Unmarshal(b, &l); err != nil {
		return err
	}
	*s = NewMemberSet(l...)
	return nil
}

func (s MemberSet) clone() MemberSet {
	c := make(MemberSet, len(s))
	for m := range s {
		c[m] = struct{}{}
	}
	return c
}

func sortMembers(l []Member) {
	sort.Slice(l, func(i, j int) bool {
		return l[i].String() < l[j].String()
	})
}

// ActionType is a capability that can be granted per label rule.
type ActionType string

const (
	// ActionEditPost allows editing content that carries a matching
	// label.
	ActionEditPost ActionType = "edit-post"

	// ActionUseLabels allows adding and removing restricted labels.
	ActionUseLabels ActionType = "use-labels"
)

// ActionTypes contains the human readable description of every valid action
// type.
var ActionTypes = map[ActionType]string{
	ActionEditPost:  "edit post",
	ActionUseLabels: "use labels",
}

// UnmarshalText satisfies the encoding.TextUnmarshaler interface. Unknown
// action types are rejected.
func (a *ActionType) UnmarshalText(b []byte) error {
	t := ActionType(b)
	if _, ok := ActionTypes[t]; !ok {
		return v1.NewUserErr(v1.ErrCodePayloadInvalid,
			"unknown action type %q", string(b))
	}
	*a = t
	return nil
}

// ActionSet is a set of action types. It is encoded as a sorted list.
type ActionSet map[ActionType]struct{}

// NewActionSet returns a set containing the provided action types.
func NewActionSet(actions ...ActionType) ActionSet {
	s := make(ActionSet, len(actions))
	for _, a := range actions {
		s[a] = struct{}{}
	}
	return s
}

// Has returns whether the set contains the action type.
func (s ActionSet) Has(a ActionType) bool {
	_, ok := s[a]
	return ok
}

// List returns the sorted action types of the set.
func (s ActionSet) List() []ActionType {
	l := make([]ActionType, 0, len(s))
	for a := range s {
		l = append(l, a)
	}
	sort.Slice(l, func(i, j int) bool { return l[i] < l[j] })
	return l
}

// MarshalJSON satisfies the json.Marshaler interface.
func (s ActionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

// UnmarshalJSON satisfies the json.Unmarshaler interface.
func (s *ActionSet) UnmarshalJSON(b []byte) error {
	var l []ActionType
	if err := json.Unmarshal(b, &l); err != nil {
		return err
	}
	*s = NewActionSet(l...)
	return nil
}
