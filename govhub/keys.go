// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package govhub

import (
	"github.com/decred/govhub/records"
)

// Key layout of the key-value store.
const (
	keyProposalCount = "proposal/count"
	keyRFPCount      = "rfp/count"
	keyPostCount     = "post/count"

	keyRules      = "access/rules"
	keyMembers    = "access/members"
	keyCategories = "settings/categories"
	keyLabels     = "settings/labels"

	// keyIndexedLabels is the set of labels that have ever been added
	// to one of the label indexes.
	keyIndexedLabels = "index/labels"

	prefixLabelProposals  = "index/label-proposals/"
	prefixLabelRFPs       = "index/label-rfps/"
	prefixLabelPosts      = "index/label-posts/"
	prefixAuthorProposals = "index/author-proposals/"
	prefixPostChildren    = "index/post-children/"
)

// Data descriptors of the stored blobs.
const (
	descriptorProposal   = "proposal-v1"
	descriptorRFP        = "rfp-v1"
	descriptorPost       = "post-v1"
	descriptorCounter    = "counter-v1"
	descriptorIndex      = "index-v1"
	descriptorStrings    = "strings-v1"
	descriptorRules      = "rules-v1"
	descriptorMembers    = "members-v1"
	descriptorCategories = "categories-v1"
	descriptorLabels     = "global-labels-v1"
)

func keyProposal(id records.ProposalID) string {
	return "proposal/" + id.String()
}

func keyRFP(id records.RFPID) string {
	return "rfp/" + id.String()
}

func keyPost(id records.PostID) string {
	return "post/" + id.String()
}

func keyLabelProposals(label string) string {
	return prefixLabelProposals + label
}

func keyLabelRFPs(label string) string {
	return prefixLabelRFPs + label
}

func keyLabelPosts(label string) string {
	return prefixLabelPosts + label
}

func keyAuthorProposals(account string) string {
	return prefixAuthorProposals + account
}

func keyPostChildren(id records.PostID) string {
	return prefixPostChildren + id.String()
}
