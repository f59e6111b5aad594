// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/decred/govhub/access"
)

// MemberOptions contains the member metadata options of the memberadd and
// memberedit commands.
type MemberOptions struct {
	Description string   `long:"description" description:"Member description"`
	Parents     []string `long:"parent" description:"Parent member, teams are prefixed with team: (repeatable)"`
	Children    []string `long:"child" description:"Child member, teams are prefixed with team: (repeatable)"`
	Permissions []string `long:"permission" description:"Permission of the form rule=action[,action...] (repeatable)"`
}

func (o MemberOptions) metadata() (access.MemberMetadata, error) {
	perms, err := parsePermissions(o.Permissions)
	if err != nil {
		return access.MemberMetadata{}, err
	}
	return memberMetadata(o.Description, o.Parents, o.Children, perms)
}

// cmdMemberAdd adds a member to the member graph.
type cmdMemberAdd struct {
	Args struct {
		Member string `positional-arg-name:"member" required:"true"`
	} `positional-args:"true"`
	MemberOptions
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdMemberAdd) Execute(args []string) error {
	m, err := access.ParseMember(c.Args.Member)
	if err != nil {
		return err
	}
	md, err := c.metadata()
	if err != nil {
		return err
	}
	if err := hub.AddMember(m, md); err != nil {
		return err
	}
	log.Infof("Member %v added", m)
	return nil
}

// cmdMemberEdit replaces the metadata of a member.
type cmdMemberEdit struct {
	Args struct {
		Member string `positional-arg-name:"member" required:"true"`
	} `positional-args:"true"`
	MemberOptions
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdMemberEdit) Execute(args []string) error {
	m, err := access.ParseMember(c.Args.Member)
	if err != nil {
		return err
	}
	md, err := c.metadata()
	if err != nil {
		return err
	}
	if err := hub.EditMember(m, md); err != nil {
		return err
	}
	log.Infof("Member %v edited", m)
	return nil
}

// cmdMemberRemove removes a member from the member graph.
type cmdMemberRemove struct {
	Args struct {
		Member string `positional-arg-name:"member" required:"true"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdMemberRemove) Execute(args []string) error {
	m, err := access.ParseMember(c.Args.Member)
	if err != nil {
		return err
	}
	if err := hub.RemoveMember(m); err != nil {
		return err
	}
	log.Infof("Member %v removed", m)
	return nil
}

// cmdMembers shows the restricted label rules, the member graph and its
// roots.
type cmdMembers struct{}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdMembers) Execute(args []string) error {
	rules, members, err := hub.AccessControlInfo()
	if err != nil {
		return err
	}
	roots, err := hub.RootMembers()
	if err != nil {
		return err
	}
	printReply(struct {
		Rules   access.RulesList   `json:"rules"`
		Members access.MembersList `json:"members"`
		Roots   []access.Member    `json:"roots"`
	}{
		Rules:   rules,
		Members: members,
		Roots:   roots,
	})
	return nil
}

// cmdPermissions shows the actions that an account holds for the labels and
// whether it may use them.
type cmdPermissions struct {
	Args struct {
		Account string   `positional-arg-name:"account" required:"true"`
		Labels  []string `positional-arg-name:"labels"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdPermissions) Execute(args []string) error {
	actions, err := hub.CheckPermissions(c.Args.Account, c.Args.Labels)
	if err != nil {
		return err
	}
	ok, err := hub.IsAllowedToUseLabels(c.Args.Account, c.Args.Labels)
	if err != nil {
		return err
	}
	printReply(struct {
		Actions      access.ActionSet `json:"actions"`
		MayUseLabels bool             `json:"may_use_labels"`
	}{
		Actions:      actions,
		MayUseLabels: ok,
	})
	return nil
}

// cmdRulesSet adds or replaces a restricted label rule. Rules are "*", a
// "starts-with:" prefix or an exact label.
type cmdRulesSet struct {
	Args struct {
		Rule        string `positional-arg-name:"rule" required:"true"`
		Description string `positional-arg-name:"description"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdRulesSet) Execute(args []string) error {
	r, err := access.ParseRule(c.Args.Rule)
	if err != nil {
		return err
	}
	err = hub.SetRestrictedRules(access.RulesList{
		r: access.RuleMetadata{Description: c.Args.Description},
	})
	if err != nil {
		return err
	}
	log.Infof("Rule %v set", r)
	return nil
}

// cmdRulesUnset removes restricted label rules.
type cmdRulesUnset struct {
	Args struct {
		Rules []string `positional-arg-name:"rules" required:"1"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdRulesUnset) Execute(args []string) error {
	rules := make([]access.Rule, 0, len(c.Args.Rules))
	for _, v := range c.Args.Rules {
		r, err := access.ParseRule(v)
		if err != nil {
			return err
		}
		rules = append(rules, r)
	}
	if err := hub.UnsetRestrictedRules(rules); err != nil {
		return err
	}
	log.Infof("Rules unset: %v", rules)
	return nil
}
