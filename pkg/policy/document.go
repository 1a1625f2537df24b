// Package policy builds, merges and patches IAM policy documents.
package policy

import (
	"encoding/json"
	"sort"
)

const Version = "2012-10-17"

// StringOrSlice marshals as a plain string when it holds exactly one element.
// AWS emits both forms and policy documents must round-trip either way.
type StringOrSlice []string

func (s *StringOrSlice) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = []string{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

func (s StringOrSlice) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

func (s StringOrSlice) Contains(v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

type Statement struct {
	Sid       string                       `json:"Sid,omitempty"`
	Effect    string                       `json:"Effect"`
	Principal map[string]StringOrSlice     `json:"Principal,omitempty"`
	Action    StringOrSlice                `json:"Action,omitempty"`
	Resource  StringOrSlice                `json:"Resource,omitempty"`
	Condition map[string]map[string]string `json:"Condition,omitempty"`
}

type Document struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

func NewDocument(statements ...Statement) *Document {
	return &Document{Version: Version, Statement: statements}
}

func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Compact returns the serialization AWS counts against policy size limits.
func (d *Document) Compact() ([]byte, error) {
	return json.Marshal(d)
}

func (d *Document) Pretty() ([]byte, error) {
	return json.MarshalIndent(d, "", "    ")
}

// SortActions orders every statement's action list. AWS does not care but
// deterministic output keeps diffs between policy versions readable.
func (d *Document) SortActions() {
	for i := range d.Statement {
		sort.Strings(d.Statement[i].Action)
	}
}

// FindBySid returns a pointer into the statement slice, or nil.
func (d *Document) FindBySid(sid string) *Statement {
	for i := range d.Statement {
		if d.Statement[i].Sid == sid {
			return &d.Statement[i]
		}
	}
	return nil
}
