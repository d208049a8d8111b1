package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"logviewer/pkg/logs"
)

func TestPlainText(t *testing.T) {
	want := "Thread created at 01 Mar 2024 - 10:00 UTC\n" +
		"[M] mod created a thread with [R] user (9)\n" +
		ruleLong + "\n" +
		"01/03 10:01 R user: hello <b>there</b>\n" +
		ruleShort + "\n" +
		"01/03 10:02 M mod: hi\n" +
		ruleLong + "\n" +
		"[M] mod (7) closed the Modmail thread.\n" +
		"Thread closed at 01 Mar 2024 - 11:30 UTC\n"
	assert.Equal(t, want, PlainText(sampleLog))
}

func TestPlainText_MultilineAndOpen(t *testing.T) {
	doc := logs.LogDocument{
		Open:      true,
		CreatedAt: "not a date",
		Creator:   &logs.Author{ID: "9", Name: "user", Discriminator: "0001"},
		Recipient: &logs.Author{ID: "9", Name: "user", Discriminator: "0001"},
		Messages: []logs.Message{{
			Timestamp:   "2024-03-01T10:01:00Z",
			Content:     "line one\nline two",
			Author:      logs.Author{ID: "9", Name: "user", Discriminator: "0001"},
			Attachments: []logs.Attachment{{URL: "https://cdn.example/a.png"}, {Filename: "b.txt", URL: "https://cdn.example/b.txt"}},
		}},
	}
	want := "Thread created at not a date\n" +
		"[R] user#0001 (9) created a Modmail thread.\n" +
		ruleLong + "\n" +
		"01/03 10:01 R user#0001: line one\n" +
		"                         line two\n" +
		"Attachment: https://cdn.example/a.png\n" +
		"Attachment: b.txt https://cdn.example/b.txt\n"
	assert.Equal(t, want, PlainText(doc))
}
