package repoutil

import "testing"

func TestPageNormalize(t *testing.T) {
	cases := []struct {
		in         Page
		page, lim  int
		offset     int
		totalPages int
		total      int64
	}{
		{Page{}, 1, DefaultLimit, 0, 3, 25},
		{Page{Page: 2, Limit: 10}, 2, 10, 10, 3, 25},
		{Page{Page: -4, Limit: 1000}, 1, MaxLimit, 0, 1, 25},
		{Page{Page: 3, Limit: 10}, 3, 10, 20, 0, 0},
	}
	for _, tc := range cases {
		got := tc.in.Normalize()
		if got.Page != tc.page || got.Limit != tc.lim {
			t.Fatalf("Normalize(%+v) = %+v", tc.in, got)
		}
		if off := tc.in.Offset(); off != tc.offset {
			t.Fatalf("Offset(%+v) = %d", tc.in, off)
		}
		if tp := tc.in.TotalPages(tc.total); tp != tc.totalPages {
			t.Fatalf("TotalPages(%+v, %d) = %d", tc.in, tc.total, tp)
		}
	}
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	if got := LikePattern("  50%_Off "); got != `%50\%\_off%` {
		t.Fatalf("LikePattern: %q", got)
	}
}
