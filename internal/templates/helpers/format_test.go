package helpers

import (
	"net/url"
	"testing"
)

func TestCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		visible int
		total   int
		want    string
	}{
		{name: "single", visible: 1, total: 1, want: "1 pack"},
		{name: "all shown", visible: 48, total: 48, want: "48 packs"},
		{name: "filtered", visible: 12, total: 1024, want: "12 of 1,024 packs"},
		{name: "none", visible: 0, total: 8, want: "0 of 8 packs"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CountOf(tc.visible, tc.total, "pack", "packs"); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestURLWithQuery(t *testing.T) {
	t.Parallel()

	if got := URLWithQuery("/", url.Values{}); got != "/" {
		t.Errorf("expected bare path, got %q", got)
	}
	got := URLWithQuery("/packs", url.Values{"version": {"6.7.2"}, "bg": {"1"}})
	if got != "/packs?bg=1&version=6.7.2" {
		t.Errorf("unexpected url %q", got)
	}
	if got := URLWithQuery("/packs?x=1", url.Values{"bg": {"0"}}); got != "/packs?x=1&bg=0" {
		t.Errorf("unexpected url %q", got)
	}
}
