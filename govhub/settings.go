// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package govhub

import (
	v1 "github.com/decred/govhub/api/v1"
)

// DefaultCategories are the allowed proposal categories until they are
// replaced using SetAllowedCategories.
var DefaultCategories = []string{
	"DevDAO Operations",
	"DevDAO Platform",
	"Events & Hackathons",
	"Engagement & Awareness",
	"Decentralized DevRel",
	"Universities & Bootcamps",
	"Tooling & Infrastructure",
	"Other",
}

// GlobalLabel is a registered label that RFPs may use.
type GlobalLabel struct {
	Value string `json:"value" yaml:"value"`
	Title string `json:"title" yaml:"title"`
	Color string `json:"color" yaml:"color"`
}

// SetAllowedCategories replaces the allowed proposal categories. Existing
// proposals keep their category.
func (g *Govhub) SetAllowedCategories(categories []string) error {
	return g.update(func(t *txn) error {
		if _, err := g.requirePrivilege(t); err != nil {
			return err
		}
		for _, c := range categories {
			if c == "" {
				return v1.NewUserErr(v1.ErrCodeCategoryInvalid,
					"empty category")
			}
		}
		return t.save(keyCategories, descriptorCategories, categories)
	})
}

// AllowedCategories returns the allowed proposal categories.
func (g *Govhub) AllowedCategories() ([]string, error) {
	var c []string
	err := g.view(func(t *txn) error {
		var err error
		c, err = t.categories()
		return err
	})
	return c, err
}

// SetGlobalLabels replaces the registered global labels.
func (g *Govhub) SetGlobalLabels(labels []GlobalLabel) error {
	return g.update(func(t *txn) error {
		if _, err := g.requirePrivilege(t); err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(labels))
		for _, l := range labels {
			if l.Value == "" {
				return v1.NewUserErr(v1.ErrCodeLabelInvalid,
					"empty label value")
			}
			if _, ok := seen[l.Value]; ok {
				return v1.NewUserErr(v1.ErrCodeLabelInvalid,
					"duplicate label %q", l.Value)
			}
			seen[l.Value] = struct{}{}
		}
		return t.save(keyLabels, descriptorLabels, labels)
	})
}

// GlobalLabels returns the registered global labels.
func (g *Govhub) GlobalLabels() ([]GlobalLabel, error) {
	var l []GlobalLabel
	err := g.view(func(t *txn) error {
		var err error
		l, err = t.globalLabels()
		return err
	})
	return l, err
}

// checkCategory verifies that the category is allowed.
func checkCategory(t *txn, category string) error {
	categories, err := t.categories()
	if err != nil {
		return err
	}
	for _, c := range categories {
		if c == category {
			return nil
		}
	}
	return v1.NewUserErr(v1.ErrCodeCategoryInvalid, "%q", category)
}

// checkGlobalLabels verifies that every label is a registered global label.
// Any label is accepted while no global labels are registered.
func checkGlobalLabels(t *txn, labels []string) error {
	registered, err := t.globalLabels()
	if err != nil {
		return err
	}
	if len(registered) == 0 {
		return nil
	}
	known := make(map[string]struct{}, len(registered))
	for _, l := range registered {
		known[l.Value] = struct{}{}
	}
	for _, l := range labels {
		if _, ok := known[l]; !ok {
			return v1.NewUserErr(v1.ErrCodeLabelInvalid,
				"%q is not a global label", l)
		}
	}
	return nil
}
