// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/decred/govhub/records"
	"github.com/decred/govhub/timeline"
	"github.com/decred/govhub/util"
)

// cmdProposalNew adds a proposal authored by the configured account. The
// body file contains the JSON encoded proposal body.
type cmdProposalNew struct {
	Args struct {
		BodyFile string   `positional-arg-name:"bodyfile" required:"true"`
		Labels   []string `positional-arg-name:"labels"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdProposalNew) Execute(args []string) error {
	var body records.ProposalBody
	if err := util.LoadJSONFile(c.Args.BodyFile, &body); err != nil {
		return err
	}
	id, err := hub.AddProposal(body, c.Args.Labels)
	if err != nil {
		return err
	}
	printReply(map[string]records.ProposalID{"id": id})
	return nil
}

// cmdProposalEdit replaces the body and labels of a proposal.
type cmdProposalEdit struct {
	Args struct {
		ID       uint32   `positional-arg-name:"id" required:"true"`
		BodyFile string   `positional-arg-name:"bodyfile" required:"true"`
		Labels   []string `positional-arg-name:"labels"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdProposalEdit) Execute(args []string) error {
	var body records.ProposalBody
	if err := util.LoadJSONFile(c.Args.BodyFile, &body); err != nil {
		return err
	}
	id := records.ProposalID(c.Args.ID)
	if err := hub.EditProposal(id, body, c.Args.Labels); err != nil {
		return err
	}
	log.Infof("Proposal %v edited", id)
	return nil
}

// cmdProposalTimeline changes the timeline status of a proposal. The
// timeline is the JSON encoded versioned timeline status, for example
// '{"timeline_version":"V2","status":"REVIEW","sponsor_requested_review":true,"reviewer_completed_attestation":false,"kyc_verified":false}'.
type cmdProposalTimeline struct {
	Args struct {
		ID       uint32 `positional-arg-name:"id" required:"true"`
		Timeline string `positional-arg-name:"timeline" required:"true"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdProposalTimeline) Execute(args []string) error {
	var t timeline.VersionedTimelineStatus
	if err := json.Unmarshal([]byte(c.Args.Timeline), &t); err != nil {
		return err
	}
	id := records.ProposalID(c.Args.ID)
	if err := hub.EditProposalTimeline(id, t); err != nil {
		return err
	}
	log.Infof("Proposal %v timeline: %v", id, t.Latest())
	return nil
}

// cmdProposalLinkRFP links a proposal to an RFP. The proposal is unlinked
// when no RFP is provided.
type cmdProposalLinkRFP struct {
	Args struct {
		ID  uint32 `positional-arg-name:"id" required:"true"`
		RFP string `positional-arg-name:"rfp"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdProposalLinkRFP) Execute(args []string) error {
	var rfp *records.RFPID
	if c.Args.RFP != "" {
		v, err := parseID(c.Args.RFP, 32)
		if err != nil {
			return err
		}
		r := records.RFPID(v)
		rfp = &r
	}
	id := records.ProposalID(c.Args.ID)
	if err := hub.EditProposalLinkedRFP(id, rfp); err != nil {
		return err
	}
	if rfp == nil {
		log.Infof("Proposal %v unlinked", id)
		return nil
	}
	log.Infof("Proposal %v linked to rfp %v", id, *rfp)
	return nil
}

// cmdProposal shows a proposal. The at option shows the snapshot that was
// current at the provided unix nano timestamp.
type cmdProposal struct {
	Args struct {
		ID uint32 `positional-arg-name:"id" required:"true"`
	} `positional-args:"true"`
	At int64 `long:"at" description:"Show the snapshot current at this unix nano timestamp"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdProposal) Execute(args []string) error {
	id := records.ProposalID(c.Args.ID)
	if c.At != 0 {
		s, err := hub.ProposalSnapshotAt(id, c.At)
		if err != nil {
			return err
		}
		printReply(s)
		return nil
	}
	p, err := hub.Proposal(id)
	if err != nil {
		return err
	}
	printReply(p)
	return nil
}

// proposalSummary is the list representation of a proposal.
type proposalSummary struct {
	ID        records.ProposalID `json:"id"`
	Author    string             `json:"author"`
	Name      string             `json:"name"`
	Status    string             `json:"status"`
	Labels    []string           `json:"labels"`
	LinkedRFP *records.RFPID     `json:"linked_rfp,omitempty"`
}

// cmdProposals lists the proposals. The label and author options list the
// ids of the matching proposals only.
type cmdProposals struct {
	Label  string `long:"label" description:"List the proposals that carry the label"`
	Author string `long:"author" description:"List the proposals of the author"`
	Labels bool   `long:"labels" description:"List the labels in use on proposals"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdProposals) Execute(args []string) error {
	switch {
	case c.Labels:
		labels, err := hub.ProposalLabels()
		if err != nil {
			return err
		}
		printReply(labels)
		return nil
	case c.Label != "":
		ids, err := hub.ProposalIDsByLabel(c.Label)
		if err != nil {
			return err
		}
		printReply(ids)
		return nil
	case c.Author != "":
		ids, err := hub.ProposalIDsByAuthor(c.Author)
		if err != nil {
			return err
		}
		printReply(ids)
		return nil
	}

	proposals, err := hub.Proposals()
	if err != nil {
		return err
	}
	summaries := make([]proposalSummary, 0, len(proposals))
	for _, p := range proposals {
		b := p.Body()
		summaries = append(summaries, proposalSummary{
			ID:        p.ID,
			Author:    p.AuthorID,
			Name:      b.Name,
			Status:    string(b.Status().Status),
			Labels:    p.Snapshot.Labels,
			LinkedRFP: b.LinkedRFP,
		})
	}
	printReply(summaries)
	return nil
}

// cmdProposalHistory prints the unified diff between every pair of
// consecutive proposal snapshots, oldest first.
type cmdProposalHistory struct {
	Args struct {
		ID uint32 `positional-arg-name:"id" required:"true"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdProposalHistory) Execute(args []string) error {
	p, err := hub.Proposal(records.ProposalID(c.Args.ID))
	if err != nil {
		return err
	}
	snapshots := append(append([]records.ProposalSnapshot{},
		p.SnapshotHistory...), p.Snapshot)

	var sb strings.Builder
	for i := 1; i < len(snapshots); i++ {
		from, to := snapshots[i-1], snapshots[i]
		d, err := snapshotDiff(
			fmt.Sprintf("snapshot %v (%v)", i-1, from.EditorID),
			fmt.Sprintf("snapshot %v (%v)", i, to.EditorID),
			from, to)
		if err != nil {
			return err
		}
		sb.WriteString(d)
	}
	if sb.Len() == 0 {
		log.Infof("Proposal %v has a single snapshot", p.ID)
		return nil
	}
	fmt.Print(sb.String())
	return nil
}
