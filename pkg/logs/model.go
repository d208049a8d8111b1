package logs

// LogDocument is one closed (or still open) modmail thread as written by the bot.
type LogDocument struct {
	Key       string    `json:"key" bson:"key"`
	BotID     string    `json:"bot_id" bson:"bot_id"` // tag checked against the serving tenant's bot
	Open      bool      `json:"open" bson:"open"`
	CreatedAt string    `json:"created_at" bson:"created_at"`
	ClosedAt  string    `json:"closed_at,omitempty" bson:"closed_at,omitempty"`
	ChannelID string    `json:"channel_id,omitempty" bson:"channel_id,omitempty"`
	GuildID   string    `json:"guild_id,omitempty" bson:"guild_id,omitempty"`
	Creator   *Author   `json:"creator,omitempty" bson:"creator,omitempty"`
	Recipient *Author   `json:"recipient,omitempty" bson:"recipient,omitempty"`
	Closer    *Author   `json:"closer,omitempty" bson:"closer,omitempty"`
	Messages  []Message `json:"messages" bson:"messages"`

	// RawWhitelist is the array exactly as stored (ints mixed with "everyone").
	RawWhitelist []any     `json:"oauth_whitelist,omitempty" bson:"oauth_whitelist,omitempty"`
	Whitelist    Whitelist `json:"-" bson:"-"`
}

type Message struct {
	ID          string       `json:"message_id" bson:"message_id"`
	Timestamp   string       `json:"timestamp" bson:"timestamp"`
	Content     string       `json:"content" bson:"content"`
	Type        string       `json:"type,omitempty" bson:"type,omitempty"` // thread_message, anonymous, system, internal, note
	Author      Author       `json:"author" bson:"author"`
	Attachments []Attachment `json:"attachments,omitempty" bson:"attachments,omitempty"`
}

type Author struct {
	ID            string `json:"id" bson:"id"`
	Name          string `json:"name" bson:"name"`
	Discriminator string `json:"discriminator" bson:"discriminator"`
	AvatarURL     string `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	Mod           bool   `json:"mod" bson:"mod"`
}

func (a Author) String() string {
	if a.Discriminator == "" || a.Discriminator == "0" {
		return a.Name
	}
	return a.Name + "#" + a.Discriminator
}

// TenantConfig is the bot's config record, keyed by its own bot id.
type TenantConfig struct {
	BotID        int64     `json:"bot_id" bson:"bot_id"`
	RawWhitelist []any     `json:"oauth_whitelist,omitempty" bson:"oauth_whitelist,omitempty"`
	Whitelist    Whitelist `json:"-" bson:"-"`
}
