package http

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/", "/"},
		{"", "/"},
		{"/api/news", "/api/news"},
		{"/api/news/11111111-2222-3333-4444-555555555555", "/api/news/:param"},
		{"/api/users/42", "/api/users/:param"},
		{"/api/users/deadbeefdeadbeef01", "/api/users/:param"},
		{"/api/news?page=2", "/api/news"},
		{"/api//news/", "/api/news"},
	}
	for _, tc := range tests {
		if got := normalizePath(tc.in); got != tc.want {
			t.Errorf("normalizePath(%q) = %q, esperaba %q", tc.in, got, tc.want)
		}
	}
}

func TestIsDynamicSegment(t *testing.T) {
	dynamic := []string{"11111111-2222-3333-4444-555555555555", "42", "deadbeefdeadbeef01", "aBcDeFgHiJkLmNoPqRsTuVwX"}
	static := []string{"news", "users", "check-username", "site-settings"}

	for _, s := range dynamic {
		if !isDynamicSegment(s) {
			t.Errorf("%q tendría que ser dinámico", s)
		}
	}
	for _, s := range static {
		if isDynamicSegment(s) {
			t.Errorf("%q tendría que ser estático", s)
		}
	}
}
