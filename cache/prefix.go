package cache

import "strings"

// Prefix is the namespace segment of a cache key identifying its logical
// domain. Callers are responsible for scoping qualifiers (tenant, user)
// inside their own domain; the store enforces no isolation of its own.
type Prefix string

// Known domains. New domains add a constant here.
const (
	PrefixResearchProjects Prefix = "research_projects"
	PrefixTeams            Prefix = "teams"
	PrefixAnalytics        Prefix = "analytics"
)

// Key builds the full cache key "{prefix}:{qualifier}".
func (p Prefix) Key(qualifier string) string {
	return string(p) + ":" + qualifier
}

// Tag returns the domain-wide tag carried by every entry written through
// an accessor of this prefix, so a whole domain can be invalidated at
// once.
func (p Prefix) Tag() string {
	return string(p)
}

// SplitKey splits a full key into prefix and qualifier. The qualifier may
// itself contain colons.
func SplitKey(key string) (Prefix, string) {
	idx := strings.IndexByte(key, ':')
	if idx < 0 {
		return Prefix(key), ""
	}
	return Prefix(key[:idx]), key[idx+1:]
}
