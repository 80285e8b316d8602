package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectAppLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"botsdash"},
			want: []string{"botsdash"},
		},
		{
			name: "direct app id first token",
			in:   []string{"botsdash", "12"},
			want: []string{"botsdash", "apps", "show", "12"},
		},
		{
			name: "direct app id after value flag",
			in:   []string{"botsdash", "--server", "http://localhost:8000", "3"},
			want: []string{"botsdash", "--server", "http://localhost:8000", "apps", "show", "3"},
		},
		{
			name: "direct app id after equals flag",
			in:   []string{"botsdash", "--format=yaml", "3"},
			want: []string{"botsdash", "--format=yaml", "apps", "show", "3"},
		},
		{
			name: "direct app id after bool flag",
			in:   []string{"botsdash", "--pretty", "3"},
			want: []string{"botsdash", "--pretty", "apps", "show", "3"},
		},
		{
			name: "direct app id after double dash",
			in:   []string{"botsdash", "--", "3"},
			want: []string{"botsdash", "--", "apps", "show", "3"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"botsdash", "apps", "start", "3"},
			want: []string{"botsdash", "apps", "start", "3"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"botsdash", "wat"},
			want: []string{"botsdash", "wat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := rewriteDirectAppLookupArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectAppLookupArgs(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
