// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/decred/govhub/records"
	"github.com/decred/govhub/util"
)

// cmdPostNew adds a root post or, with the parent option, a reply. The body
// file contains the JSON encoded post body.
type cmdPostNew struct {
	Args struct {
		BodyFile string   `positional-arg-name:"bodyfile" required:"true"`
		Labels   []string `positional-arg-name:"labels"`
	} `positional-args:"true"`
	Parent string `long:"parent" description:"Id of the post that is replied to"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdPostNew) Execute(args []string) error {
	var parent *records.PostID
	if c.Parent != "" {
		v, err := parseID(c.Parent, 64)
		if err != nil {
			return err
		}
		p := records.PostID(v)
		parent = &p
	}
	var body records.PostBody
	if err := util.LoadJSONFile(c.Args.BodyFile, &body); err != nil {
		return err
	}
	id, err := hub.AddPost(parent, body, c.Args.Labels)
	if err != nil {
		return err
	}
	printReply(map[string]records.PostID{"id": id})
	return nil
}

// cmdPostEdit replaces the body and labels of a post.
type cmdPostEdit struct {
	Args struct {
		ID       uint64   `positional-arg-name:"id" required:"true"`
		BodyFile string   `positional-arg-name:"bodyfile" required:"true"`
		Labels   []string `positional-arg-name:"labels"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdPostEdit) Execute(args []string) error {
	var body records.PostBody
	if err := util.LoadJSONFile(c.Args.BodyFile, &body); err != nil {
		return err
	}
	id := records.PostID(c.Args.ID)
	if err := hub.EditPost(id, body, c.Args.Labels); err != nil {
		return err
	}
	log.Infof("Post %v edited", id)
	return nil
}

// cmdPostLike likes a post as the configured account.
type cmdPostLike struct {
	Args struct {
		ID uint64 `positional-arg-name:"id" required:"true"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdPostLike) Execute(args []string) error {
	id := records.PostID(c.Args.ID)
	if err := hub.AddLike(id); err != nil {
		return err
	}
	log.Infof("Post %v liked", id)
	return nil
}

// cmdPost shows a post and the ids of its replies.
type cmdPost struct {
	Args struct {
		ID uint64 `positional-arg-name:"id" required:"true"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdPost) Execute(args []string) error {
	id := records.PostID(c.Args.ID)
	p, err := hub.Post(id)
	if err != nil {
		return err
	}
	children, err := hub.PostChildren(id)
	if err != nil {
		return err
	}
	printReply(struct {
		Post     *records.Post    `json:"post"`
		Children []records.PostID `json:"children"`
	}{
		Post:     p,
		Children: children,
	})
	return nil
}
