// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package records

import (
	"sort"
	"strconv"
)

// ProposalID is the id of a proposal. Ids are assigned sequentially starting
// from zero.
type ProposalID uint32

// String satisfies the fmt.Stringer interface.
func (id ProposalID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// RFPID is the id of an RFP.
type RFPID uint32

// String satisfies the fmt.Stringer interface.
func (id RFPID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// PostID is the id of a post.
type PostID uint64

// String satisfies the fmt.Stringer interface.
func (id PostID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ProposalIDs is a sorted set of proposal ids.
type ProposalIDs []ProposalID

// Has returns whether the set contains the id.
func (s ProposalIDs) Has(id ProposalID) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= id })
	return i < len(s) && s[i] == id
}

// Add returns the set with the id inserted.
func (s ProposalIDs) Add(id ProposalID) ProposalIDs {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= id })
	if i < len(s) && s[i] == id {
		return s
	}
	r := make(ProposalIDs, 0, len(s)+1)
	r = append(r, s[:i]...)
	r = append(r, id)
	return append(r, s[i:]...)
}

// Remove returns the set with the id removed.
func (s ProposalIDs) Remove(id ProposalID) ProposalIDs {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= id })
	if i == len(s) || s[i] != id {
		return s
	}
	r := make(ProposalIDs, 0, len(s)-1)
	r = append(r, s[:i]...)
	return append(r, s[i+1:]...)
}

// NewProposalIDs returns a set containing the provided ids.
func NewProposalIDs(ids ...ProposalID) ProposalIDs {
	s := make(ProposalIDs, 0, len(ids))
	for _, id := range ids {
		s = s.Add(id)
	}
	return s
}
