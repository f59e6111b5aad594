// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package govhub

import (
	"github.com/decred/govhub/access"
	v1 "github.com/decred/govhub/api/v1"
	"github.com/decred/govhub/records"
)

func (t *txn) proposal(id records.ProposalID) (*records.Proposal, error) {
	var p records.Proposal
	ok, err := t.load(keyProposal(id), descriptorProposal, &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, v1.NewUserErr(v1.ErrCodeNotFound, "proposal %v", id)
	}
	return &p, nil
}

func (t *txn) putProposal(p *records.Proposal) error {
	return t.save(keyProposal(p.ID), descriptorProposal, p)
}

// proposals returns every proposal ordered by id.
func (t *txn) proposals() ([]records.Proposal, error) {
	n, err := t.count(keyProposalCount)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		keys = append(keys, keyProposal(records.ProposalID(i)))
	}
	blobs, err := t.getMany(keys)
	if err != nil {
		return nil, err
	}
	ps := make([]records.Proposal, 0, n)
	for _, k := range keys {
		b, ok := blobs[k]
		if !ok {
			return nil, v1.NewUserErr(v1.ErrCodeNotFound, "%v", k)
		}
		var p records.Proposal
		if err := decode(k, b, descriptorProposal, &p); err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}

func (t *txn) rfp(id records.RFPID) (*records.RFP, error) {
	var r records.RFP
	ok, err := t.load(keyRFP(id), descriptorRFP, &r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, v1.NewUserErr(v1.ErrCodeNotFound, "rfp %v", id)
	}
	return &r, nil
}

func (t *txn) putRFP(r *records.RFP) error {
	return t.save(keyRFP(r.ID), descriptorRFP, r)
}

// rfps returns every RFP ordered by id.
func (t *txn) rfps() ([]records.RFP, error) {
	n, err := t.count(keyRFPCount)
	if err != nil {
		return nil, err
	}
	rs := make([]records.RFP, 0, n)
	for i := uint64(0); i < n; i++ {
		r, err := t.rfp(records.RFPID(i))
		if err != nil {
			return nil, err
		}
		rs = append(rs, *r)
	}
	return rs, nil
}

func (t *txn) post(id records.PostID) (*records.Post, error) {
	var p records.Post
	ok, err := t.load(keyPost(id), descriptorPost, &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, v1.NewUserErr(v1.ErrCodeNotFound, "post %v", id)
	}
	return &p, nil
}

func (t *txn) putPost(p *records.Post) error {
	return t.save(keyPost(p.ID), descriptorPost, p)
}

// posts returns every post ordered by id.
func (t *txn) posts() ([]records.Post, error) {
	n, err := t.count(keyPostCount)
	if err != nil {
		return nil, err
	}
	ps := make([]records.Post, 0, n)
	for i := uint64(0); i < n; i++ {
		p, err := t.post(records.PostID(i))
		if err != nil {
			return nil, err
		}
		ps = append(ps, *p)
	}
	return ps, nil
}

// rules returns the restricted label rules.
func (t *txn) rules() (access.RulesList, error) {
	rules := make(access.RulesList)
	if _, err := t.load(keyRules, descriptorRules, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (t *txn) putRules(rules access.RulesList) error {
	return t.save(keyRules, descriptorRules, rules)
}

// members returns the member graph.
func (t *txn) members() (access.MembersList, error) {
	members := make(access.MembersList)
	if _, err := t.load(keyMembers, descriptorMembers, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (t *txn) putMembers(members access.MembersList) error {
	return t.save(keyMembers, descriptorMembers, members)
}

// categories returns the allowed proposal categories. The default
// categories are returned when none have been set.
func (t *txn) categories() ([]string, error) {
	var c []string
	ok, err := t.load(keyCategories, descriptorCategories, &c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return append([]string{}, DefaultCategories...), nil
	}
	return c, nil
}

// globalLabels returns the registered global labels.
func (t *txn) globalLabels() ([]GlobalLabel, error) {
	var l []GlobalLabel
	if _, err := t.load(keyLabels, descriptorLabels, &l); err != nil {
		return nil, err
	}
	return l, nil
}

// indexedLabels returns every label that has been added to a label index.
func (t *txn) indexedLabels() ([]string, error) {
	return t.strings(keyIndexedLabels)
}

// trackLabels records the labels in the set of indexed labels.
func (t *txn) trackLabels(labels []string) error {
	known, err := t.indexedLabels()
	if err != nil {
		return err
	}
	all := records.NormalizeLabels(append(known, labels...))
	if len(all) == len(known) {
		return nil
	}
	return t.save(keyIndexedLabels, descriptorStrings, all)
}
