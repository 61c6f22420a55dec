package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectCoinLookupArgs(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "bare coin id",
			in:   []string{"numis", "42"},
			want: []string{"numis", "coins", "show", "42"},
		},
		{
			name: "flags before id",
			in:   []string{"numis", "--api", "http://x", "42"},
			want: []string{"numis", "--api", "http://x", "coins", "show", "42"},
		},
		{
			name: "subcommand untouched",
			in:   []string{"numis", "coins", "list"},
			want: []string{"numis", "coins", "list"},
		},
		{
			name: "zero is not a coin id",
			in:   []string{"numis", "0"},
			want: []string{"numis", "0"},
		},
		{
			name: "after double dash untouched",
			in:   []string{"numis", "--", "7"},
			want: []string{"numis", "--", "7"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := rewriteDirectCoinLookupArgs(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
