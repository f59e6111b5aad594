// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package records

import (
	"encoding/json"

	v1 "github.com/decred/govhub/api/v1"
	"github.com/decred/govhub/util"
)

// PostKind is the kind of a discussion post.
type PostKind string

const (
	PostIdea     PostKind = "Idea"
	PostSolution PostKind = "Solution"
	PostComment  PostKind = "Comment"
)

// PostKinds contains the supported post kinds.
var PostKinds = map[PostKind]string{
	PostIdea:     "idea",
	PostSolution: "solution",
	PostComment:  "comment",
}

// PostBodyV0 is the first post body version. Comments have no name.
type PostBodyV0 struct {
	Kind        PostKind `json:"post_type"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description"`
}

// PostBody is the latest post body version.
type PostBody = PostBodyV0

// Validate verifies the body fields.
func (b PostBodyV0) Validate() error {
	if _, ok := PostKinds[b.Kind]; !ok {
		return v1.NewUserErr(v1.ErrCodePayloadInvalid,
			"unknown post type %q", b.Kind)
	}
	if b.Kind != PostComment && b.Name == "" {
		return v1.NewUserErr(v1.ErrCodePayloadInvalid, "name is empty")
	}
	return nil
}

const (
	PostBodyVersion0 = "V0"

	postBodyVersionTag = "post_body_version"
)

// VersionedPostBody wraps a post body of any known version.
type VersionedPostBody struct {
	Version string
	V0      *PostBodyV0
}

// NewVersionedPostBody wraps the provided body as the latest version.
func NewVersionedPostBody(b PostBody) VersionedPostBody {
	return VersionedPostBody{Version: PostBodyVersion0, V0: &b}
}

// Latest returns the wrapped body converted to the latest version.
func (v VersionedPostBody) Latest() PostBody {
	if v.V0 != nil {
		return *v.V0
	}
	return PostBody{}
}

// MarshalJSON satisfies the json.Marshaler interface.
func (v VersionedPostBody) MarshalJSON() ([]byte, error) {
	if v.Version != PostBodyVersion0 {
		return nil, schemaMismatch("post body", v.Version)
	}
	return util.MarshalTagged(postBodyVersionTag, v.Version, v.V0)
}

// UnmarshalJSON satisfies the json.Unmarshaler interface.
func (v *VersionedPostBody) UnmarshalJSON(b []byte) error {
	version, err := util.PeekTag(b, postBodyVersionTag)
	if err != nil {
		return err
	}
	if version != PostBodyVersion0 {
		return schemaMismatch("post body", version)
	}
	var body PostBodyV0
	if err := json.Unmarshal(b, &body); err != nil {
		return err
	}
	*v = NewVersionedPostBody(body)
	return nil
}

// PostSnapshot is one version of a post.
type PostSnapshot struct {
	EditorID  string            `json:"editor_id"`
	Timestamp int64             `json:"timestamp"`
	Labels    []string          `json:"labels"`
	Body      VersionedPostBody `json:"body"`
}

// Like is a like given to a post.
type Like struct {
	AuthorID  string `json:"author_id"`
	Timestamp int64  `json:"timestamp"`
}

// Post is a discussion post. Root posts have no parent.
type Post struct {
	ID              PostID         `json:"id"`
	AuthorID        string         `json:"author_id"`
	ParentID        *PostID        `json:"parent_id"`
	Likes           []Like         `json:"likes"`
	Snapshot        PostSnapshot   `json:"snapshot"`
	SnapshotHistory []PostSnapshot `json:"snapshot_history"`
}

// Push installs a new current snapshot and moves the prior one to the
// history.
func (p *Post) Push(s PostSnapshot) {
	p.SnapshotHistory = append(p.SnapshotHistory, p.Snapshot)
	p.Snapshot = s
}

// Body returns the current body in its latest version.
func (p *Post) Body() PostBody {
	return p.Snapshot.Body.Latest()
}

// LikedBy returns whether the account liked the post.
func (p *Post) LikedBy(account string) bool {
	for _, l := range p.Likes {
		if l.AuthorID == account {
			return true
		}
	}
	return false
}
