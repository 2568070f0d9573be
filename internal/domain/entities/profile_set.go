package entities

import (
	"sort"
)

// ProfileEntry is one named profile as found in a configuration file.
type ProfileEntry struct {
	Name string
	// Source is the file the profile was read from; empty for profiles that
	// exist only in memory.
	Source    string
	Overrides ProfileOverrides
}

// ProfileSet is the union of every profile visible to an invocation. Names are
// unique; when several files define the same name the highest-precedence file
// wins.
type ProfileSet struct {
	entries map[string]ProfileEntry
	files   []string
}

// NewProfileSet creates an empty profile set.
func NewProfileSet() *ProfileSet {
	return &ProfileSet{entries: make(map[string]ProfileEntry)}
}

// Put adds or replaces a profile by name.
func (s *ProfileSet) Put(entry ProfileEntry) {
	s.entries[entry.Name] = entry
}

// AddFile records a configuration file that contributed to the set.
func (s *ProfileSet) AddFile(path string) {
	s.files = append(s.files, path)
}

// Files returns the contributing files in the order they were loaded.
func (s *ProfileSet) Files() []string {
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}

// Find looks up a profile by name.
func (s *ProfileSet) Find(name string) (ProfileEntry, bool) {
	entry, ok := s.entries[name]
	return entry, ok
}

// Names returns all profile names, sorted.
func (s *ProfileSet) Names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of profiles.
func (s *ProfileSet) Len() int {
	return len(s.entries)
}

// Only returns the single profile when the set holds exactly one.
func (s *ProfileSet) Only() (ProfileEntry, bool) {
	if len(s.entries) != 1 {
		return ProfileEntry{}, false
	}
	for _, entry := range s.entries {
		return entry, true
	}
	return ProfileEntry{}, false
}
