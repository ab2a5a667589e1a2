package cache

import "testing"

func TestPrefix_Key(t *testing.T) {
	if got := PrefixTeams.Key("42"); got != "teams:42" {
		t.Errorf("Key() = %q, want teams:42", got)
	}
	if got := PrefixResearchProjects.Key("proj-7/summary"); got != "research_projects:proj-7/summary" {
		t.Errorf("Key() = %q", got)
	}
}

func TestPrefix_Tag(t *testing.T) {
	if got := PrefixAnalytics.Tag(); got != "analytics" {
		t.Errorf("Tag() = %q, want analytics", got)
	}
}

func TestSplitKey(t *testing.T) {
	cases := []struct {
		key       string
		prefix    Prefix
		qualifier string
	}{
		{"teams:42", PrefixTeams, "42"},
		{"analytics:daily:2026-08-29", PrefixAnalytics, "daily:2026-08-29"},
		{"noseparator", Prefix("noseparator"), ""},
		{":leading", Prefix(""), "leading"},
	}
	for _, tc := range cases {
		prefix, qualifier := SplitKey(tc.key)
		if prefix != tc.prefix || qualifier != tc.qualifier {
			t.Errorf("SplitKey(%q) = %q, %q, want %q, %q",
				tc.key, prefix, qualifier, tc.prefix, tc.qualifier)
		}
	}
}
