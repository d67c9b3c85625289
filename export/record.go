package export

import (
	"encoding/json"
	"time"

	"discord-extractor/models"

	"github.com/bwmarrin/discordgo"
)

// MessageToRecord flattens one Discord message into the export record.
// Channel and guild names are passed in because the gateway payload only
// carries their ids. Timestamps are normalized to UTC ISO-8601; a message
// that was never edited gets an empty edited timestamp.
func MessageToRecord(m *discordgo.Message, channelName, guildName string) models.MessageRecord {
	rec := models.MessageRecord{
		ID:          m.ID,
		ChannelID:   m.ChannelID,
		ChannelName: channelName,
		GuildID:     m.GuildID,
		GuildName:   guildName,
		Timestamp:   utcISO(m.Timestamp),
		Content:     m.Content,
		Attachments: []string{},
		Embeds:      []string{},
		Pinned:      m.Pinned,
	}
	if m.Author != nil {
		rec.AuthorID = m.Author.ID
		rec.AuthorName = m.Author.String()
	}
	for _, a := range m.Attachments {
		rec.Attachments = append(rec.Attachments, a.URL)
	}
	for _, e := range m.Embeds {
		// Embeds are informational only; their JSON text is close enough.
		if b, err := json.Marshal(e); err == nil {
			rec.Embeds = append(rec.Embeds, string(b))
		}
	}
	if m.EditedTimestamp != nil {
		rec.EditedTimestamp = utcISO(*m.EditedTimestamp)
	}
	return rec
}

// utcISO renders a timestamp in UTC ISO-8601; zero times render empty.
func utcISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
