package template

import "encoding/json"

// Ref marshals to {"Ref": "LogicalId"}.
type Ref string

func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Ref": string(r)})
}

// Sub marshals to {"Fn::Sub": "..."} for ${} substitution strings.
type Sub string

func (s Sub) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Fn::Sub": string(s)})
}

// GetAtt marshals to {"Fn::GetAtt": ["LogicalId", "Attribute"]}.
type GetAtt struct {
	LogicalID string
	Attribute string
}

func (g GetAtt) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string{"Fn::GetAtt": {g.LogicalID, g.Attribute}})
}

// Join marshals to {"Fn::Join": [delimiter, values]}.
type Join struct {
	Delimiter string
	Values    []any
}

func (j Join) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]any{"Fn::Join": {j.Delimiter, j.Values}})
}

// ImportValue marshals to {"Fn::ImportValue": value}. The value is usually a
// Sub referencing another stack's export.
type ImportValue struct {
	Value any
}

func (i ImportValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"Fn::ImportValue": i.Value})
}

// StackExport builds the export name convention ${AWS::StackName}-suffix.
func StackExport(suffix string) Sub {
	return Sub("${AWS::StackName}-" + suffix)
}
