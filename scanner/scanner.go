// Package scanner reads channel history: paginated message fetches plus
// the author tally that feeds the interactive author picker.
package scanner

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"discord-extractor/filter"
	"discord-extractor/models"

	"github.com/bwmarrin/discordgo"
)

// ErrNoAuthors is returned when a scan finds no message author at all.
var ErrNoAuthors = errors.New("no authors found: raise --scan-limit or widen the channel selection")

// pageSize is the API maximum for one ChannelMessages call.
const pageSize = 100

// FetchHistory reads up to limit most-recent messages of a channel,
// newest first, paging with the before-id cursor. On a mid-fetch failure
// the messages read so far are returned along with the error.
func FetchHistory(s *discordgo.Session, channelID string, limit int) ([]*discordgo.Message, error) {
	var out []*discordgo.Message
	beforeID := ""
	for len(out) < limit {
		n := limit - len(out)
		if n > pageSize {
			n = pageSize
		}
		page, err := s.ChannelMessages(channelID, n, beforeID, "", "")
		if err != nil {
			return out, err
		}
		if len(page) == 0 {
			break
		}
		out = append(out, page...)
		beforeID = page[len(page)-1].ID
	}
	return out, nil
}

// TextChannels returns the guild's text channels in display order.
func TextChannels(s *discordgo.Session, guildID string) ([]*discordgo.Channel, error) {
	channels, err := s.GuildChannels(guildID)
	if err != nil {
		return nil, err
	}
	var text []*discordgo.Channel
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText {
			text = append(text, ch)
		}
	}
	sort.Slice(text, func(i, j int) bool {
		if text[i].Position != text[j].Position {
			return text[i].Position < text[j].Position
		}
		return text[i].ID < text[j].ID
	})
	return text, nil
}

// CollectAuthors walks recent history of every admitted channel in the
// given guilds and builds the frequency-ranked author directory.
// Per-channel read failures are logged and skipped; partial results are
// expected when some channels are unreadable.
func CollectAuthors(s *discordgo.Session, guilds []*discordgo.Guild, store *filter.Store, limit int) ([]models.Author, error) {
	counts := make(map[string]int)
	names := make(map[string]string)

	for _, g := range guilds {
		channels, err := TextChannels(s, g.ID)
		if err != nil {
			slog.Error("listing channels failed",
				slog.String("guild", g.Name), slog.String("guild_id", g.ID), slog.Any("err", err))
			continue
		}
		for _, ch := range channels {
			if !store.ChannelAllowed(ch) {
				continue
			}
			msgs, err := FetchHistory(s, ch.ID, limit)
			if err != nil {
				LogChannelError("scanning history failed", ch, err)
			}
			for _, m := range msgs {
				if m.Author == nil || m.Author.ID == "" {
					continue
				}
				counts[m.Author.ID]++
				if _, ok := names[m.Author.ID]; !ok {
					names[m.Author.ID] = m.Author.String()
				}
			}
		}
	}

	if len(counts) == 0 {
		return nil, ErrNoAuthors
	}
	return rank(counts, names), nil
}

// LogChannelError logs a per-channel read failure with enough context to
// diagnose it, distinguishing missing permissions from other faults.
func LogChannelError(msg string, ch *discordgo.Channel, err error) {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == 403 {
		slog.Error("missing permissions for channel",
			slog.String("channel", ch.Name), slog.String("channel_id", ch.ID))
		return
	}
	slog.Error(msg,
		slog.String("channel", ch.Name), slog.String("channel_id", ch.ID), slog.Any("err", err))
}

// rank orders authors by descending message count, then ascending
// case-insensitive display name.
func rank(counts map[string]int, names map[string]string) []models.Author {
	authors := make([]models.Author, 0, len(counts))
	for id, c := range counts {
		name := names[id]
		if name == "" {
			name = id
		}
		authors = append(authors, models.Author{ID: id, Name: name, Count: c})
	}
	sort.Slice(authors, func(i, j int) bool {
		if authors[i].Count != authors[j].Count {
			return authors[i].Count > authors[j].Count
		}
		return strings.ToLower(authors[i].Name) < strings.ToLower(authors[j].Name)
	})
	return authors
}
