package models

// MessageRecord is the flat form of one Discord message, written verbatim
// to the JSON and CSV outputs. All snowflake ids are kept as strings so
// downstream JSON/CSV consumers do not lose precision parsing them as
// numbers.
type MessageRecord struct {
	ID              string   `json:"id"`
	ChannelID       string   `json:"channel_id"`
	ChannelName     string   `json:"channel_name"`
	GuildID         string   `json:"guild_id"`
	GuildName       string   `json:"guild_name"`
	AuthorID        string   `json:"author_id"`
	AuthorName      string   `json:"author_name"`
	Timestamp       string   `json:"timestamp"`
	Content         string   `json:"content"`
	Attachments     []string `json:"attachments"`
	Embeds          []string `json:"embeds"`
	Pinned          bool     `json:"pinned"`
	EditedTimestamp string   `json:"edited_timestamp"`
}

// Map flattens the record into the generic form the file writers consume.
func (r MessageRecord) Map() map[string]any {
	return map[string]any{
		"id":               r.ID,
		"channel_id":       r.ChannelID,
		"channel_name":     r.ChannelName,
		"guild_id":         r.GuildID,
		"guild_name":       r.GuildName,
		"author_id":        r.AuthorID,
		"author_name":      r.AuthorName,
		"timestamp":        r.Timestamp,
		"content":          r.Content,
		"attachments":      r.Attachments,
		"embeds":           r.Embeds,
		"pinned":           r.Pinned,
		"edited_timestamp": r.EditedTimestamp,
	}
}
