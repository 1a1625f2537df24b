package policy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAcceptsStringAndSliceForms(t *testing.T) {
	raw := `{
		"Version": "2012-10-17",
		"Statement": [
			{"Sid": "Single", "Effect": "Allow", "Action": "s3:GetObject", "Resource": "*"},
			{"Sid": "Many", "Effect": "Allow", "Action": ["s3:PutObject", "s3:DeleteObject"], "Resource": ["arn:aws:s3:::b", "arn:aws:s3:::b/*"]}
		]
	}`

	doc, err := Parse([]byte(raw))
	require.NoError(t, err)
	require.Len(t, doc.Statement, 2)
	assert.Equal(t, StringOrSlice{"s3:GetObject"}, doc.Statement[0].Action)
	assert.Equal(t, StringOrSlice{"s3:PutObject", "s3:DeleteObject"}, doc.Statement[1].Action)
	assert.Equal(t, StringOrSlice{"*"}, doc.Statement[0].Resource)
}

func TestMarshalSingleElementAsString(t *testing.T) {
	s := StringOrSlice{"sts:AssumeRole"}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `"sts:AssumeRole"`, string(data))

	s = StringOrSlice{"a", "b"}
	data, err = json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, string(data))
}

func TestFindBySid(t *testing.T) {
	doc := NewDocument(
		Statement{Sid: "One", Effect: "Allow"},
		Statement{Sid: "Two", Effect: "Allow"},
	)
	stmt := doc.FindBySid("Two")
	require.NotNil(t, stmt)
	assert.Equal(t, "Two", stmt.Sid)
	assert.Nil(t, doc.FindBySid("Missing"))
}
