package filter

import (
	"sort"

	"github.com/bwmarrin/discordgo"
)

// Store holds the resolved channel and author filter sets for one
// session. A nil set means no filter: everything is admitted.
type Store struct {
	channels map[string]struct{}
	authors  map[string]struct{}
}

// NewStore returns a store admitting everything.
func NewStore() *Store {
	return &Store{}
}

// SetChannels installs the channel filter. Entries may be channel ids or
// channel names.
func (s *Store) SetChannels(entries []string) {
	s.channels = toSet(entries)
}

// SetAuthors installs the author filter. Entries must be bare user ids.
func (s *Store) SetAuthors(ids []string) {
	s.authors = toSet(ids)
}

// HasChannelFilter reports whether a channel filter is installed.
func (s *Store) HasChannelFilter() bool {
	return s.channels != nil
}

// HasAuthorFilter reports whether an author filter is installed.
func (s *Store) HasAuthorFilter() bool {
	return s.authors != nil
}

// Channels returns the channel filter entries, sorted.
func (s *Store) Channels() []string {
	return sorted(s.channels)
}

// Authors returns the author filter entries, sorted.
func (s *Store) Authors() []string {
	return sorted(s.authors)
}

// ChannelAllowed reports whether the channel passes the filter. Matching
// is by id or by human-readable name: operators may specify either on the
// command line.
func (s *Store) ChannelAllowed(ch *discordgo.Channel) bool {
	if s.channels == nil {
		return true
	}
	if ch == nil {
		return false
	}
	if _, ok := s.channels[ch.ID]; ok {
		return true
	}
	_, ok := s.channels[ch.Name]
	return ok
}

// AuthorAllowed reports whether the author passes the filter. Matching is
// by id only.
func (s *Store) AuthorAllowed(u *discordgo.User) bool {
	if s.authors == nil {
		return true
	}
	if u == nil {
		return false
	}
	_, ok := s.authors[u.ID]
	return ok
}

func toSet(entries []string) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		set[e] = struct{}{}
	}
	return set
}

func sorted(set map[string]struct{}) []string {
	if set == nil {
		return nil
	}
	out := make([]string, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
