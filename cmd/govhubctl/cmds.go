// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

// cmds contains the list of CLI commands.
type cmds struct {
	// The config is parsed separately from the commands and set as a global
	// variable. The DoNotUse config field is here as a workaround to prevent
	// go-flags unknown flag errors during parsing and to allow the config fields
	// to be printed in the go-flags created help message. It should not be used
	// by the commands.
	DoNotUse *config

	// Proposal commands
	ProposalNew      cmdProposalNew      `command:"proposalnew" description:"Add a proposal"`
	ProposalEdit     cmdProposalEdit     `command:"proposaledit" description:"Edit the body and labels of a proposal"`
	ProposalTimeline cmdProposalTimeline `command:"proposaltimeline" description:"Change the timeline status of a proposal"`
	ProposalLinkRFP  cmdProposalLinkRFP  `command:"proposallinkrfp" description:"Link a proposal to an RFP or unlink it"`
	Proposal         cmdProposal         `command:"proposal" description:"Show a proposal"`
	Proposals        cmdProposals        `command:"proposals" description:"List proposals"`
	ProposalHistory  cmdProposalHistory  `command:"proposalhistory" description:"Show the snapshot diffs of a proposal"`

	// RFP commands
	RFPNew      cmdRFPNew      `command:"rfpnew" description:"Add an RFP"`
	RFPEdit     cmdRFPEdit     `command:"rfpedit" description:"Edit the body and labels of an RFP"`
	RFPTimeline cmdRFPTimeline `command:"rfptimeline" description:"Change the timeline status of an RFP"`
	RFPCancel   cmdRFPCancel   `command:"rfpcancel" description:"Cancel an RFP and resolve its linked proposals"`
	RFP         cmdRFP         `command:"rfp" description:"Show an RFP"`
	RFPs        cmdRFPs        `command:"rfps" description:"List RFPs"`

	// Post commands
	PostNew  cmdPostNew  `command:"postnew" description:"Add a post or a reply"`
	PostEdit cmdPostEdit `command:"postedit" description:"Edit a post"`
	PostLike cmdPostLike `command:"postlike" description:"Like a post"`
	Post     cmdPost     `command:"post" description:"Show a post and its replies"`

	// Access control commands
	MemberAdd    cmdMemberAdd    `command:"memberadd" description:"Add a member to the member graph"`
	MemberEdit   cmdMemberEdit   `command:"memberedit" description:"Replace the metadata of a member"`
	MemberRemove cmdMemberRemove `command:"memberremove" description:"Remove a member from the member graph"`
	Members      cmdMembers      `command:"members" description:"Show the restricted rules and the member graph"`
	Permissions  cmdPermissions  `command:"permissions" description:"Show the actions an account holds for labels"`
	RulesSet     cmdRulesSet     `command:"rulesset" description:"Add or replace a restricted label rule"`
	RulesUnset   cmdRulesUnset   `command:"rulesunset" description:"Remove restricted label rules"`

	// Settings commands
	CategoriesSet cmdCategoriesSet `command:"categoriesset" description:"Replace the allowed proposal categories"`
	LabelsSet     cmdLabelsSet     `command:"labelsset" description:"Replace the global labels from a yaml file"`
	Settings      cmdSettings      `command:"settings" description:"Show the categories and global labels"`
	Seed          cmdSeed          `command:"seed" description:"Bootstrap rules, members, categories and labels from a yaml file"`
	Fsck          cmdFsck          `command:"fsck" description:"Verify the consistency of the store"`
}
