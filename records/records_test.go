// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package records

import (
	"encoding/json"
	"testing"

	v1 "github.com/decred/govhub/api/v1"
	"github.com/decred/govhub/timeline"
	"github.com/go-test/deep"
)

func TestLabelsDiff(t *testing.T) {
	var tests = []struct {
		name           string
		a, b           []string
		added, removed []string
	}{
		{"equal", []string{"a", "b"}, []string{"b", "a"},
			[]string{}, []string{}},
		{"replace", []string{"a"}, []string{"b"},
			[]string{"b"}, []string{"a"}},
		{"from empty", nil, []string{"x", "y"},
			[]string{"x", "y"}, []string{}},
	}
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			added, removed := LabelsDiff(v.a, v.b)
			if diff := deep.Equal(added, v.added); diff != nil {
				t.Error(diff)
			}
			if diff := deep.Equal(removed, v.removed); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestNormalizeLabels(t *testing.T) {
	got := NormalizeLabels([]string{"b", "a", "b"})
	if diff := deep.Equal(got, []string{"a", "b"}); diff != nil {
		t.Error(diff)
	}
	if err := ValidateLabels([]string{"ok", " padded"}); err == nil {
		t.Error("expected error for padded label")
	}
	if err := ValidateLabels([]string{""}); err == nil {
		t.Error("expected error for empty label")
	}
}

func TestProposalIDs(t *testing.T) {
	s := NewProposalIDs(5, 1, 3, 1)
	if diff := deep.Equal(s, ProposalIDs{1, 3, 5}); diff != nil {
		t.Fatal(diff)
	}
	s = s.Add(4).Remove(1).Remove(7)
	if diff := deep.Equal(s, ProposalIDs{3, 4, 5}); diff != nil {
		t.Fatal(diff)
	}
	if !s.Has(4) || s.Has(1) {
		t.Errorf("unexpected membership %v", s)
	}
}

func TestRFPSnapshots(t *testing.T) {
	body := NewVersionedRFPBody(RFPBody{
		Name:     "Indexers",
		Timeline: timeline.AcceptingSubmissions(),
	})
	r := RFP{
		ID: 0,
		Snapshot: RFPSnapshot{BlockHeight: 100, Labels: []string{"a"},
			Body: body},
	}
	r.Push(RFPSnapshot{BlockHeight: 200, Labels: []string{"b"}, Body: body,
		LinkedProposals: NewProposalIDs(1)})

	s, ok := r.SnapshotAt(150)
	if !ok {
		t.Fatal("snapshot not found")
	}
	if diff := deep.Equal(s.Labels, []string{"a"}); diff != nil {
		t.Error(diff)
	}
	if _, ok := r.SnapshotAt(99); ok {
		t.Error("snapshot found before creation")
	}
	s, _ = r.SnapshotAt(200)
	if !s.LinkedProposals.Has(1) {
		t.Errorf("got linked proposals %v", s.LinkedProposals)
	}
}

func TestVersionedRFPBodyJSON(t *testing.T) {
	body := NewVersionedRFPBody(RFPBody{
		Name:               "Indexers",
		Summary:            "summary",
		Timeline:           timeline.AcceptingSubmissions(),
		SubmissionDeadline: 1700000000,
	})
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"rfp_body_version":"V0","name":"Indexers","summary":"summary",` +
		`"description":"","timeline":{"status":"ACCEPTING_SUBMISSIONS"},` +
		`"submission_deadline":1700000000}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
	var got VersionedRFPBody
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(got, body); diff != nil {
		t.Error(diff)
	}

	err = json.Unmarshal([]byte(`{"rfp_body_version":"V1"}`), &got)
	if v1.ErrCodeOf(err) != v1.ErrCodeSchemaMismatch {
		t.Errorf("got %v, want schema mismatch", err)
	}
}

func TestPostBody(t *testing.T) {
	var tests = []struct {
		name    string
		body    PostBody
		wantErr bool
	}{
		{"idea", PostBody{Kind: PostIdea, Name: "x"}, false},
		{"comment without name", PostBody{Kind: PostComment}, false},
		{"idea without name", PostBody{Kind: PostIdea}, true},
		{"unknown kind", PostBody{Kind: "Poll", Name: "x"}, true},
	}
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			err := v.body.Validate()
			if (err != nil) != v.wantErr {
				t.Errorf("got %v, want err %v", err, v.wantErr)
			}
		})
	}

	p := Post{Likes: []Like{{AuthorID: "a.near"}}}
	if !p.LikedBy("a.near") || p.LikedBy("b.near") {
		t.Error("unexpected likes")
	}
}
