// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"strings"

	"github.com/decred/govhub/records"
	"github.com/decred/govhub/timeline"
	"github.com/decred/govhub/util"
)

// cmdRFPNew adds an RFP. The body file contains the JSON encoded RFP body.
type cmdRFPNew struct {
	Args struct {
		BodyFile string   `positional-arg-name:"bodyfile" required:"true"`
		Labels   []string `positional-arg-name:"labels"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdRFPNew) Execute(args []string) error {
	var body records.RFPBody
	if err := util.LoadJSONFile(c.Args.BodyFile, &body); err != nil {
		return err
	}
	id, err := hub.AddRFP(body, c.Args.Labels)
	if err != nil {
		return err
	}
	printReply(map[string]records.RFPID{"id": id})
	return nil
}

// cmdRFPEdit replaces the body and labels of an RFP.
type cmdRFPEdit struct {
	Args struct {
		ID       uint32   `positional-arg-name:"id" required:"true"`
		BodyFile string   `positional-arg-name:"bodyfile" required:"true"`
		Labels   []string `positional-arg-name:"labels"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdRFPEdit) Execute(args []string) error {
	var body records.RFPBody
	if err := util.LoadJSONFile(c.Args.BodyFile, &body); err != nil {
		return err
	}
	id := records.RFPID(c.Args.ID)
	if err := hub.EditRFP(id, body, c.Args.Labels); err != nil {
		return err
	}
	log.Infof("RFP %v edited", id)
	return nil
}

// cmdRFPTimeline changes the timeline status of an RFP.
type cmdRFPTimeline struct {
	Args struct {
		ID     uint32 `positional-arg-name:"id" required:"true"`
		Status string `positional-arg-name:"status" required:"true" description:"ACCEPTING_SUBMISSIONS, EVALUATION, PROPOSAL_SELECTED or CANCELLED"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdRFPTimeline) Execute(args []string) error {
	t := timeline.RFPTimelineStatus{
		Status: timeline.RFPStatusT(strings.ToUpper(c.Args.Status)),
	}
	id := records.RFPID(c.Args.ID)
	if err := hub.EditRFPTimeline(id, t); err != nil {
		return err
	}
	log.Infof("RFP %v timeline: %v", id, t)
	return nil
}

// cmdRFPCancel cancels an RFP. Every linked proposal must be listed either
// for cancellation or for unlinking.
type cmdRFPCancel struct {
	Args struct {
		ID uint32 `positional-arg-name:"id" required:"true"`
	} `positional-args:"true"`
	Cancel []uint32 `long:"cancel" description:"Linked proposal to cancel (repeatable)"`
	Unlink []uint32 `long:"unlink" description:"Linked proposal to unlink (repeatable)"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdRFPCancel) Execute(args []string) error {
	id := records.RFPID(c.Args.ID)
	err := hub.CancelRFP(id, proposalIDs(c.Cancel), proposalIDs(c.Unlink))
	if err != nil {
		return err
	}
	log.Infof("RFP %v cancelled", id)
	return nil
}

func proposalIDs(ids []uint32) []records.ProposalID {
	r := make([]records.ProposalID, 0, len(ids))
	for _, v := range ids {
		r = append(r, records.ProposalID(v))
	}
	return r
}

// cmdRFP shows an RFP. The height option shows the snapshot that was current
// at the provided block height.
type cmdRFP struct {
	Args struct {
		ID uint32 `positional-arg-name:"id" required:"true"`
	} `positional-args:"true"`
	Height uint64 `long:"height" description:"Show the snapshot current at this block height"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdRFP) Execute(args []string) error {
	id := records.RFPID(c.Args.ID)
	if c.Height != 0 {
		s, err := hub.RFPSnapshotAt(id, c.Height)
		if err != nil {
			return err
		}
		printReply(s)
		return nil
	}
	r, err := hub.RFP(id)
	if err != nil {
		return err
	}
	printReply(r)
	return nil
}

// rfpSummary is the list representation of an RFP.
type rfpSummary struct {
	ID              records.RFPID       `json:"id"`
	Name            string              `json:"name"`
	Status          string              `json:"status"`
	Labels          []string            `json:"labels"`
	LinkedProposals records.ProposalIDs `json:"linked_proposals"`
}

// cmdRFPs lists the RFPs.
type cmdRFPs struct {
	Label string `long:"label" description:"List the ids of the RFPs that carry the label"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdRFPs) Execute(args []string) error {
	if c.Label != "" {
		ids, err := hub.RFPIDsByLabel(c.Label)
		if err != nil {
			return err
		}
		printReply(ids)
		return nil
	}
	rfps, err := hub.RFPs()
	if err != nil {
		return err
	}
	summaries := make([]rfpSummary, 0, len(rfps))
	for _, r := range rfps {
		b := r.Body()
		summaries = append(summaries, rfpSummary{
			ID:              r.ID,
			Name:            b.Name,
			Status:          string(b.Timeline.Status),
			Labels:          r.Snapshot.Labels,
			LinkedProposals: r.Snapshot.LinkedProposals,
		})
	}
	printReply(summaries)
	return nil
}
