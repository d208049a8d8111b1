package viewer

import (
	"strings"
	"time"

	"logviewer/pkg/logs"
)

const (
	stampLong  = "02 Jan 2006 - 15:04 UTC"
	stampShort = "02/01 15:04"

	ruleLong  = "────────────────────────────────────────────────"
	ruleShort = "────────────────"
)

// Layouts the bot has written timestamps in over the years.
var stampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05",
}

// formatStamp falls back to the stored string when it cannot be parsed.
func formatStamp(raw, layout string) string {
	for _, l := range stampLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t.UTC().Format(layout)
		}
	}
	return raw
}

func threadOpener(doc logs.LogDocument) string {
	creator, recipient := authorOrUnknown(doc.Creator), authorOrUnknown(doc.Recipient)
	if creator.ID == recipient.ID {
		return "[R] " + recipient.String() + " (" + recipient.ID + ") created a Modmail thread."
	}
	return "[M] " + creator.String() + " created a thread with [R] " + recipient.String() + " (" + recipient.ID + ")"
}

func authorOrUnknown(a *logs.Author) logs.Author {
	if a == nil {
		return logs.Author{ID: "0", Name: "unknown"}
	}
	return *a
}

// PlainText renders a log the way moderators paste it into tickets: a header,
// one line per message prefixed with M (moderator) or R (recipient), a short
// rule between runs of the same author, and a footer once the thread closed.
func PlainText(doc logs.LogDocument) string {
	var b strings.Builder
	b.WriteString("Thread created at " + formatStamp(doc.CreatedAt, stampLong) + "\n")
	b.WriteString(threadOpener(doc) + "\n")
	b.WriteString(ruleLong + "\n")

	for i, m := range doc.Messages {
		who := "R"
		if m.Author.Mod {
			who = "M"
		}
		prefix := formatStamp(m.Timestamp, stampShort) + " " + who + " " + m.Author.String() + ": "
		indent := "\n" + strings.Repeat(" ", len([]rune(prefix)))
		b.WriteString(prefix + strings.ReplaceAll(m.Content, "\n", indent) + "\n")
		for _, a := range m.Attachments {
			if a.Filename != "" {
				b.WriteString("Attachment: " + a.Filename + " " + a.URL + "\n")
			} else {
				b.WriteString("Attachment: " + a.URL + "\n")
			}
		}
		if i+1 < len(doc.Messages) && doc.Messages[i+1].Author.ID != m.Author.ID {
			b.WriteString(ruleShort + "\n")
		}
	}

	if !doc.Open {
		if len(doc.Messages) > 0 {
			b.WriteString(ruleLong + "\n")
		}
		closer := authorOrUnknown(doc.Closer)
		b.WriteString("[M] " + closer.String() + " (" + closer.ID + ") closed the Modmail thread.\n")
		if doc.ClosedAt != "" {
			b.WriteString("Thread closed at " + formatStamp(doc.ClosedAt, stampLong) + "\n")
		}
	}
	return b.String()
}
