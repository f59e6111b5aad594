// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"

	"github.com/decred/govhub/govhub"
	"github.com/decred/govhub/util"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// cmdCategoriesSet replaces the allowed proposal categories.
type cmdCategoriesSet struct {
	Args struct {
		Categories []string `positional-arg-name:"categories" required:"1"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdCategoriesSet) Execute(args []string) error {
	if err := hub.SetAllowedCategories(c.Args.Categories); err != nil {
		return err
	}
	log.Infof("Categories set: %v", c.Args.Categories)
	return nil
}

// cmdLabelsSet replaces the global labels. The file contains a yaml list of
// labels with the value, title and color fields.
type cmdLabelsSet struct {
	Args struct {
		File string `positional-arg-name:"file" required:"true"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdLabelsSet) Execute(args []string) error {
	b, err := os.ReadFile(util.CleanAndExpandPath(c.Args.File))
	if err != nil {
		return err
	}
	var labels []govhub.GlobalLabel
	d := yaml.NewDecoder(bytes.NewReader(b))
	d.KnownFields(true)
	if err := d.Decode(&labels); err != nil {
		return errors.Errorf("decode labels: %v", err)
	}
	if err := hub.SetGlobalLabels(labels); err != nil {
		return err
	}
	log.Infof("%v global labels set", len(labels))
	return nil
}

// cmdSettings shows the allowed categories and the global labels.
type cmdSettings struct{}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdSettings) Execute(args []string) error {
	categories, err := hub.AllowedCategories()
	if err != nil {
		return err
	}
	labels, err := hub.GlobalLabels()
	if err != nil {
		return err
	}
	printReply(struct {
		Categories []string             `json:"categories"`
		Labels     []govhub.GlobalLabel `json:"labels"`
	}{
		Categories: categories,
		Labels:     labels,
	})
	return nil
}

// cmdSeed bootstraps the restricted rules, the member graph, the categories
// and the global labels from a yaml file.
type cmdSeed struct {
	Args struct {
		File string `positional-arg-name:"file" required:"true"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdSeed) Execute(args []string) error {
	s, err := loadSeed(c.Args.File)
	if err != nil {
		return err
	}
	if err := applySeed(hub, s); err != nil {
		return err
	}
	log.Infof("Seeded %v rules, %v members, %v categories, %v labels",
		len(s.Rules), len(s.Members), len(s.Categories), len(s.Labels))
	return nil
}

// cmdFsck verifies the consistency of the store.
type cmdFsck struct{}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdFsck) Execute(args []string) error {
	if err := hub.Fsck(); err != nil {
		return err
	}
	log.Infof("Store is consistent")
	return nil
}
