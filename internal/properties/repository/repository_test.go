package repository

import (
	"strings"
	"testing"
)

func TestBuildListWhereSearchSharesPlaceholder(t *testing.T) {
	city := "Guadalajara"
	search := "jardín"

	where, args := buildListWhere(ListParams{City: &city, Search: &search})

	if !strings.Contains(where, "city ILIKE $2") {
		t.Fatalf("expected city filter, got %q", where)
	}
	if !strings.Contains(where, "(title ILIKE $3 OR description ILIKE $3 OR street ILIKE $3)") {
		t.Fatalf("expected search filter on one placeholder, got %q", where)
	}
	if len(args) != 3 || args[2] != "%jardín%" {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestOrderByFallsBackToCreatedAt(t *testing.T) {
	cases := []struct {
		params ListParams
		want   string
	}{
		{ListParams{}, "created_at DESC"},
		{ListParams{SortBy: "price", SortOrder: "asc"}, "price ASC"},
		{ListParams{SortBy: "price; DROP TABLE properties"}, "created_at DESC"},
	}
	for _, tc := range cases {
		if got := orderBy(tc.params); got != tc.want {
			t.Errorf("orderBy(%+v) = %q, want %q", tc.params, got, tc.want)
		}
	}
}
