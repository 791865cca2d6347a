package config

import (
	"errors"
	"testing"
)

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []int64
		wantErr error
	}{
		{"single id", "123", []int64{123}, nil},
		{"several ids with spaces", "1, 2 ,3", []int64{1, 2, 3}, nil},
		{"empty", "", nil, nil},
		{"trailing comma", "1,2,", []int64{1, 2}, nil},
		{"not a number", "1,abc", nil, ErrBadAdminList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIDList(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" @support , ,@backup,")
	if len(got) != 2 || got[0] != "@support" || got[1] != "@backup" {
		t.Errorf("got %v, want [@support @backup]", got)
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := Config{AdminIDs: []int64{10, 20}}

	if !cfg.IsAdmin(10) || !cfg.IsAdmin(20) {
		t.Error("configured ids must be admins")
	}
	if cfg.IsAdmin(30) {
		t.Error("unconfigured id must not be an admin")
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"complete", Config{BotToken: "t", DBDsn: "d", AdminIDs: []int64{1}}, nil},
		{"missing token", Config{DBDsn: "d", AdminIDs: []int64{1}}, ErrTokenEmpty},
		{"missing dsn", Config{BotToken: "t", AdminIDs: []int64{1}}, ErrDBDsnEmpty},
		{"no admins", Config{BotToken: "t", DBDsn: "d"}, ErrNoAdmins},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.check(); !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}
