package utils

import "testing"

func TestPageNormalize(t *testing.T) {
	cases := []struct {
		in   Page
		want Page
	}{
		{Page{0, 0}, Page{1, 20}},
		{Page{-3, -1}, Page{1, 20}},
		{Page{2, 50}, Page{2, 50}},
		{Page{1, 500}, Page{1, 100}},
	}
	for _, tc := range cases {
		if got := tc.in.Normalize(); got != tc.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestPageOffset(t *testing.T) {
	p := Page{Number: 3, Size: 20}
	if off := p.Offset(); off != 40 {
		t.Fatalf("Offset = %d, want 40", off)
	}
}

func TestNewPageInfo(t *testing.T) {
	info := NewPageInfo(Page{Number: 2, Size: 20}, 41)
	if info.Pages != 3 || info.Total != 41 || info.Page != 2 || info.Limit != 20 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if empty := NewPageInfo(Page{Number: 1, Size: 20}, 0); empty.Pages != 0 {
		t.Fatalf("expected 0 pages for empty set, got %d", empty.Pages)
	}
}
