package llm

import (
	"encoding/json"
	"testing"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "valid passthrough",
			in:   `{"a":1}`,
			want: `{"a":1}`,
		},
		{
			name: "markdown fence",
			in:   "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "smart quotes",
			in:   `{“insight”: “Use a “pattern interrupt” opener”}`,
			want: `{"insight": "Use a "pattern interrupt" opener"}`,
		},
		{
			name: "surrounding prose",
			in:   `Here is the extraction you asked for: {"insights": []} Hope that helps!`,
			want: `{"insights": []}`,
		},
		{
			name: "trailing comma in object",
			in:   `{"a": 1, "b": 2,}`,
			want: `{"a": 1, "b": 2}`,
		},
		{
			name: "trailing comma in array",
			in:   "[1, 2, 3,\n]",
			want: "[1, 2, 3\n]",
		},
		{
			name: "comma inside string preserved",
			in:   `{"text": "hello, }world,"}`,
			want: `{"text": "hello, }world,"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RepairJSON(tt.in); got != tt.want {
				t.Errorf("RepairJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRepairJSON_ParsesAfterRepair(t *testing.T) {
	raw := "```json\n{\n  \"insights\": [\n    {\"category\": \"CLOSING\", \"insight\": \"Send the recap before the call ends\", \"confidence\": 0.9,},\n  ],\n  \"templates\": [],\n}\n```"

	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		t.Fatal("fixture should not parse before repair")
	}
	if err := json.Unmarshal([]byte(RepairJSON(raw)), &parsed); err != nil {
		t.Fatalf("repaired JSON still does not parse: %v", err)
	}
	if _, ok := parsed["insights"]; !ok {
		t.Error("repaired JSON lost the insights key")
	}
}
