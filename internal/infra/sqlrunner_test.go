package infra

import "testing"

func TestExtractMarker(t *testing.T) {
	query := `--sql 8a8e0d52-7f5d-4f21-8b7d-f7d4b821eed7
select 1;
`
	marker, body, err := extractMarker(query)
	if err != nil {
		t.Fatalf("extractMarker error: %v", err)
	}
	if marker != "8a8e0d52-7f5d-4f21-8b7d-f7d4b821eed7" {
		t.Fatalf("marker mismatch: %q", marker)
	}
	if body != "select 1;" {
		t.Fatalf("body mismatch: %q", body)
	}
}

func TestExtractMarkerRejectsUnmarkedQuery(t *testing.T) {
	for _, query := range []string{"select 1;", "--sql not-a-uuid\nselect 1;", "   "} {
		if _, _, err := extractMarker(query); err == nil {
			t.Fatalf("expected error for %q", query)
		}
	}
}
