// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"strings"

	"github.com/decred/govhub/access"
	"github.com/decred/govhub/govhub"
	"github.com/decred/govhub/util"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// seedFile is the yaml bootstrap file of a govhub instance.
//
//	rules:
//	  - rule: "starts-with:wg-"
//	    description: working group labels
//	members:
//	  - member: mod.near
//	  - member: "team:moderators"
//	    children: [mod.near]
//	  - member: "team:wg"
//	    permissions:
//	      "starts-with:wg-": [edit-post, use-labels]
//	categories: [Other]
//	labels:
//	  - {value: funding, title: Funding, color: green}
type seedFile struct {
	Rules      []seedRule           `yaml:"rules"`
	Members    []seedMember         `yaml:"members"`
	Categories []string             `yaml:"categories"`
	Labels     []govhub.GlobalLabel `yaml:"labels"`
}

type seedRule struct {
	Rule        string `yaml:"rule"`
	Description string `yaml:"description"`
}

type seedMember struct {
	Member      string              `yaml:"member"`
	Description string              `yaml:"description"`
	Parents     []string            `yaml:"parents"`
	Children    []string            `yaml:"children"`
	Permissions map[string][]string `yaml:"permissions"`
}

// loadSeed reads and decodes a seed file. Unknown fields are rejected.
func loadSeed(path string) (*seedFile, error) {
	b, err := os.ReadFile(util.CleanAndExpandPath(path))
	if err != nil {
		return nil, err
	}
	return parseSeed(b)
}

func parseSeed(b []byte) (*seedFile, error) {
	var s seedFile
	d := yaml.NewDecoder(bytes.NewReader(b))
	d.KnownFields(true)
	if err := d.Decode(&s); err != nil {
		return nil, errors.Errorf("decode seed: %v", err)
	}
	return &s, nil
}

// rulesList returns the restricted rules of the seed.
func (s *seedFile) rulesList() (access.RulesList, error) {
	rules := make(access.RulesList, len(s.Rules))
	for _, v := range s.Rules {
		r, err := access.ParseRule(v.Rule)
		if err != nil {
			return nil, err
		}
		rules[r] = access.RuleMetadata{Description: v.Description}
	}
	return rules, nil
}

// memberMetadata builds member metadata from its textual parts. Permissions
// map the textual encoding of a rule to action types.
func memberMetadata(description string, parents, children []string, permissions map[string][]string) (access.MemberMetadata, error) {
	md := access.MemberMetadata{
		Description: description,
		Permissions: make(map[access.Rule]access.ActionSet, len(permissions)),
		Parents:     make(access.MemberSet, len(parents)),
		Children:    make(access.MemberSet, len(children)),
	}
	for _, v := range parents {
		m, err := access.ParseMember(v)
		if err != nil {
			return md, err
		}
		md.Parents[m] = struct{}{}
	}
	for _, v := range children {
		m, err := access.ParseMember(v)
		if err != nil {
			return md, err
		}
		md.Children[m] = struct{}{}
	}
	for rule, actions := range permissions {
		r, err := access.ParseRule(rule)
		if err != nil {
			return md, err
		}
		set := make(access.ActionSet, len(actions))
		for _, v := range actions {
			var a access.ActionType
			if err := a.UnmarshalText([]byte(v)); err != nil {
				return md, err
			}
			set[a] = struct{}{}
		}
		md.Permissions[r] = set
	}
	return md, nil
}

// parsePermissions parses permissions of the form rule=action[,action...].
func parsePermissions(perms []string) (map[string][]string, error) {
	r := make(map[string][]string, len(perms))
	for _, v := range perms {
		i := strings.LastIndex(v, "=")
		if i <= 0 {
			return nil, errors.Errorf("invalid permission %q: want "+
				"rule=action[,action...]", v)
		}
		r[v[:i]] = append(r[v[:i]], strings.Split(v[i+1:], ",")...)
	}
	return r, nil
}

// applySeed applies the seed to the hub. Members are added in file order so
// parents must be listed before the members that reference them. Every part
// is committed on its own.
func applySeed(g *govhub.Govhub, s *seedFile) error {
	if len(s.Rules) > 0 {
		rules, err := s.rulesList()
		if err != nil {
			return err
		}
		if err := g.SetRestrictedRules(rules); err != nil {
			return errors.Wrap(err, "rules")
		}
	}
	for _, v := range s.Members {
		m, err := access.ParseMember(v.Member)
		if err != nil {
			return err
		}
		md, err := memberMetadata(v.Description, v.Parents, v.Children,
			v.Permissions)
		if err != nil {
			return errors.Wrapf(err, "member %v", m)
		}
		if err := g.AddMember(m, md); err != nil {
			return errors.Wrapf(err, "member %v", m)
		}
	}
	if len(s.Categories) > 0 {
		if err := g.SetAllowedCategories(s.Categories); err != nil {
			return errors.Wrap(err, "categories")
		}
	}
	if len(s.Labels) > 0 {
		if err := g.SetGlobalLabels(s.Labels); err != nil {
			return errors.Wrap(err, "labels")
		}
	}
	return nil
}
