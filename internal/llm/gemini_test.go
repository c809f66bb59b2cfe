package llm

import "testing"

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain array",
			raw:  `[{"id":"tx-1"}]`,
			want: `[{"id":"tx-1"}]`,
		},
		{
			name: "surrounding whitespace",
			raw:  "\n  [1, 2]\n\n",
			want: "[1, 2]",
		},
		{
			name: "json fence",
			raw:  "```json\n[{\"id\":\"tx-1\"}]\n```",
			want: `[{"id":"tx-1"}]`,
		},
		{
			name: "bare fence",
			raw:  "```\n[1]\n```",
			want: "[1]",
		},
		{
			name: "prose around array",
			raw:  "Here are the results:\n[{\"id\":\"tx-1\"}]\nHope that helps!",
			want: `[{"id":"tx-1"}]`,
		},
		{
			name: "fence and prose",
			raw:  "Sure!\n```json\n[1, 2, 3]\n```\nDone.",
			want: "[1, 2, 3]",
		},
		{
			name: "single line fence left alone",
			raw:  "```[1]```",
			want: "```[1]```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.raw); got != tt.want {
				t.Errorf("cleanModelJSON(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
