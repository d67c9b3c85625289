// Package export maps Discord messages to flat records and writes the
// bulk JSON/CSV exports.
package export

import (
	"log/slog"
	"path/filepath"
	"time"

	"discord-extractor/filter"
	"discord-extractor/scanner"

	"github.com/bwmarrin/discordgo"
)

// timestampToken is the compact UTC token shared by the two export files.
const timestampToken = "20060102T150405Z"

// Run exports recent history of every admitted channel in the given
// guilds into one JSON and one CSV file under outDir, sharing a UTC
// timestamp token. Unreadable channels are logged and skipped.
func Run(s *discordgo.Session, guilds []*discordgo.Guild, store *filter.Store, limit int, outDir string) error {
	var records []map[string]any
	for _, g := range guilds {
		slog.Info("exporting guild", slog.String("guild", g.Name), slog.String("guild_id", g.ID))
		channels, err := scanner.TextChannels(s, g.ID)
		if err != nil {
			slog.Error("listing channels failed",
				slog.String("guild", g.Name), slog.String("guild_id", g.ID), slog.Any("err", err))
			continue
		}
		for _, ch := range channels {
			if !store.ChannelAllowed(ch) {
				continue
			}
			slog.Info("fetching history",
				slog.String("channel", ch.Name), slog.String("channel_id", ch.ID))
			msgs, err := scanner.FetchHistory(s, ch.ID, limit)
			if err != nil {
				scanner.LogChannelError("reading history failed", ch, err)
			}
			for _, m := range msgs {
				if !store.AuthorAllowed(m.Author) {
					continue
				}
				records = append(records, MessageToRecord(m, ch.Name, g.Name).Map())
			}
		}
	}

	ts := time.Now().UTC().Format(timestampToken)
	if err := WriteJSON(filepath.Join(outDir, "export_"+ts+".json"), records); err != nil {
		return err
	}
	if err := WriteCSV(filepath.Join(outDir, "export_"+ts+".csv"), records); err != nil {
		return err
	}
	slog.Info("bulk export finished", slog.Int("records", len(records)))
	return nil
}
