// Copyright (c) 2017-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalTagged encodes v as a JSON object and prepends the provided tag
// field. v must encode to a JSON object or to null. This is used for the
// internally tagged encodings of versioned types.
func MarshalTagged(tag, value string, v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	t, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"`)
	buf.WriteString(tag)
	buf.WriteString(`":`)
	buf.Write(t)

	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")), bytes.Equal(b, []byte("{}")):
	case len(b) > 1 && b[0] == '{':
		buf.WriteByte(',')
		buf.Write(b[1 : len(b)-1])
	default:
		return nil, fmt.Errorf("tagged value %T is not an object", v)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// PeekTag returns the string value of the provided field of a JSON object.
// An empty string is returned when the field is absent.
func PeekTag(b []byte, tag string) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return "", err
	}
	raw, ok := fields[tag]
	if !ok {
		return "", nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("tag %v: %v", tag, err)
	}
	return value, nil
}
