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
	ruleAny            = "*"
	ruleStartsWithPref = "starts-with:"
)

// RuleKind is the kind of label matching performed by a rule.
type RuleKind int

// The order of the rule kinds defines the order of rules.
const (
	RuleExactMatch RuleKind = iota
	RuleStartsWith
	RuleAny
)

// Rule classifies labels. The textual encoding is "*" for a rule that matches
// any label, "starts-with:<prefix>" for a prefix rule and the bare label for an
// exact match.
type Rule struct {
	Kind  RuleKind
	Value string
}

// ExactMatch returns a rule that matches the provided label only.
func ExactMatch(label string) Rule {
	return Rule{Kind: RuleExactMatch, Value: label}
}

// StartsWith returns a rule that matches the labels with the provided prefix.
func StartsWith(prefix string) Rule {
	return Rule{Kind: RuleStartsWith, Value: prefix}
}

// Any returns a rule that matches every label.
func Any() Rule {
	return Rule{Kind: RuleAny}
}

// ParseRule parses the textual encoding of a rule.
func ParseRule(s string) (Rule, error) {
	switch {
	case s == ruleAny:
		return Any(), nil
	case strings.HasPrefix(s, ruleStartsWithPref):
		return StartsWith(strings.TrimPrefix(s, ruleStartsWithPref)), nil
	case s == "":
		return Rule{}, v1.NewUserErr(v1.ErrCodePayloadInvalid, "empty rule")
	default:
		return ExactMatch(s), nil
	}
}

// String returns the textual encoding of the rule.
func (r Rule) String() string {
	switch r.Kind {
	case RuleAny:
		return ruleAny
	case RuleStartsWith:
		return ruleStartsWithPref + r.Value
	default:
		return r.Value
	}
}

// MarshalText satisfies the encoding.TextMarshaler interface.
func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText satisfies the encoding.TextUnmarshaler interface.
func (r *Rule) UnmarshalText(b []byte) error {
	p, err := ParseRule(string(b))
	if err != nil {
		return err
	}
	*r = p
	return nil
}

// Less reports whether r sorts before o. Rules are ordered by kind and then by
// value.
func (r Rule) Less(o Rule) bool {
	if r.Kind != o.Kind {
		return r.Kind < o.Kind
	}
	return r.Value < o.Value
}

// Applies returns whether the rule matches the label.
func (r Rule) Applies(label string) bool {
	switch r.Kind {
	case RuleExactMatch:
		return label == r.Value
	case RuleStartsWith:
		return strings.HasPrefix(label, r.Value)
	case RuleAny:
		return true
	}
	return false
}

// AppliesToAny returns whether the rule matches at least one of the labels.
func (r Rule) AppliesToAny(labels []string) bool {
	for _, l := range labels {
		if r.Applies(l) {
			return true
		}
	}
	return false
}

// SortRules sorts the provided rules in place.
func SortRules(rules []Rule) {
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Less(rules[j])
	})
}

const ruleMetadataV0 = "V0"

// RuleMetadata describes a restricted label rule. It is encoded with a
// "rule_metadata_version" tag.
type RuleMetadata struct {
	Description string
}

type ruleMetadataV0JSON struct {
	Version     string `json:"rule_metadata_version"`
	Description string `json:"description"`
}

// MarshalJSON satisfies the json.Marshaler interface.
func (m RuleMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(ruleMetadataV0JSON{
		Version:     ruleMetadataV0,
		Description: m.Description,
	})
}

// UnmarshalJSON satisfies the json.Unmarshaler interface.
func (m *RuleMetadata) UnmarshalJSON(b []byte) error {
	var r ruleMetadataV0JSON
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	if r.Version != ruleMetadataV0 {
		return v1.NewUserErr(v1.ErrCodeSchemaMismatch,
			"rule metadata version %q", r.Version)
	}
	m.Description = r.Description
	return nil
}

// RulesList contains the rules that mark labels as restricted. Attaching or
// detaching a restricted label requires the UseLabels action type.
type RulesList map[Rule]RuleMetadata

// Rules returns the sorted rules of the list.
func (l RulesList) Rules() []Rule {
	rules := make([]Rule, 0, len(l))
	for r := range l {
		rules = append(rules, r)
	}
	SortRules(rules)
	return rules
}

// Set adds or replaces the provided rules.
func (l RulesList) Set(rules RulesList) {
	for r, md := range rules {
		l[r] = md
	}
}

// Unset removes the provided rules. Rules that are not present are ignored.
func (l RulesList) Unset(rules []Rule) {
	for _, r := range rules {
		delete(l, r)
	}
}

// IsRestricted returns whether any rule of the list matches the label.
func (l RulesList) IsRestricted(label string) bool {
	for r := range l {
		if r.Applies(label) {
			return true
		}
	}
	return false
}

// FindRestricted returns the sorted subset of labels that are matched by at
// least one rule. The Any rule does not mark labels as restricted.
func (l RulesList) FindRestricted(labels []string) []string {
	restricted := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		for r := range l {
			if r.Kind == RuleAny {
				continue
			}
			if r.Applies(label) {
				restricted = append(restricted, label)
				seen[label] = struct{}{}
				break
			}
		}
	}
	sort.Strings(restricted)
	return restricted
}
