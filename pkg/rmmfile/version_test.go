// SPDX-License-Identifier: MPL-2.0

package rmmfile

import (
	"errors"
	"testing"
)

func TestBumpVersionCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "initial bumps to 1000001", in: "1000000", want: "1000001"},
		{name: "sequential bump", in: "1000001", want: "1000002"},
		{name: "small value", in: "7", want: "8"},
		{name: "empty is invalid", in: "", wantErr: true},
		{name: "non-numeric is invalid", in: "v1.0", wantErr: true},
		{name: "float is invalid", in: "1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BumpVersionCode(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("BumpVersionCode(%q) = %q, want error", tt.in, got)
				}
				if !errors.Is(err, ErrInvalidVersionCode) {
					t.Errorf("BumpVersionCode(%q) error does not wrap ErrInvalidVersionCode: %v", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("BumpVersionCode(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("BumpVersionCode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBumpVersionCodeNotIdempotent(t *testing.T) {
	t.Parallel()

	code := "1000000"
	for i, want := range []string{"1000001", "1000002"} {
		next, err := BumpVersionCode(code)
		if err != nil {
			t.Fatalf("bump %d: unexpected error: %v", i+1, err)
		}
		if next != want {
			t.Fatalf("bump %d: got %q, want %q", i+1, next, want)
		}
		code = next
	}
}
