package shared

import (
	"net/http/httptest"
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		isZero  bool
	}{
		{name: "plain date", raw: "2026-03-15"},
		{name: "rfc3339", raw: "2026-03-15T10:30:00Z"},
		{name: "empty is zero", raw: "", isZero: true},
		{name: "garbage", raw: "not-a-date", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseDate(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if parsed.IsZero() != tc.isZero {
				t.Fatalf("zero mismatch for %q", tc.raw)
			}
		})
	}
}

func TestParsePaginationClampsLimit(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=500&offset=20", nil)
	page := ParsePagination(req, 25, 100)
	if page.Limit != 100 {
		t.Fatalf("expected limit clamped to 100, got %d", page.Limit)
	}
	if page.Offset != 20 {
		t.Fatalf("expected offset 20, got %d", page.Offset)
	}
}

func TestParsePaginationDefaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=bogus&offset=-2", nil)
	page := ParsePagination(req, 25, 100)
	if page.Limit != 25 || page.Offset != 0 {
		t.Fatalf("expected defaults, got %+v", page)
	}
}

func TestParsePaginationPageAlias(t *testing.T) {
	req := httptest.NewRequest("GET", "/?page=3&limit=10", nil)
	page := ParsePagination(req, 25, 100)
	if page.Limit != 10 || page.Offset != 20 {
		t.Fatalf("expected limit 10 offset 20, got %+v", page)
	}

	// An explicit offset wins over the page alias.
	req = httptest.NewRequest("GET", "/?page=3&offset=5&limit=10", nil)
	page = ParsePagination(req, 25, 100)
	if page.Offset != 5 {
		t.Fatalf("expected offset 5, got %d", page.Offset)
	}
}
