package token

import (
	"context"
	"testing"
)

func TestIsSSMRef(t *testing.T) {
	if IsSSMRef("sl.ABcd1234") {
		t.Fatal("literal token misdetected as SSM reference")
	}
	if !IsSSMRef("aws:ssm:us-east-1:/prod/dropbox/token") {
		t.Fatal("SSM reference not detected")
	}
}

func TestParseSSMRef(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		wantRegion string
		wantName   string
		wantErr    bool
	}{
		{name: "valid", token: "aws:ssm:us-east-1:dropbox-token", wantRegion: "us-east-1", wantName: "dropbox-token"},
		{name: "path-style name", token: "aws:ssm:eu-west-1:/prod/dropbox/token", wantRegion: "eu-west-1", wantName: "/prod/dropbox/token"},
		{name: "missing name", token: "aws:ssm:us-east-1", wantErr: true},
		{name: "empty region", token: "aws:ssm::name", wantErr: true},
		{name: "empty name", token: "aws:ssm:us-east-1:", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			region, name, err := parseSSMRef(tc.token)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if region != tc.wantRegion || name != tc.wantName {
				t.Fatalf("got (%q, %q), want (%q, %q)", region, name, tc.wantRegion, tc.wantName)
			}
		})
	}
}

func TestResolvePassesLiteralThrough(t *testing.T) {
	got, err := Resolve(context.Background(), "sl.ABcd1234")
	if err != nil {
		t.Fatal(err)
	}
	if got != "sl.ABcd1234" {
		t.Fatalf("literal token changed: %q", got)
	}
}
