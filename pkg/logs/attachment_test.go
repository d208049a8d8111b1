package logs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestAttachment_UnmarshalBSON(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "message_id", Value: "1"},
		{Key: "attachments", Value: bson.A{
			bson.D{{Key: "id", Value: "42"}, {Key: "filename", Value: "a.png"}, {Key: "url", Value: "https://cdn.example/a.png"}, {Key: "size", Value: 1.5e3}},
			"https://cdn.example/b.png",
			bson.D{{Key: "url", Value: int32(5)}, {Key: "is_image", Value: "yes"}},
			nil,
		}},
	})
	require.NoError(t, err)

	var m Message
	require.NoError(t, bson.Unmarshal(raw, &m))
	require.Len(t, m.Attachments, 4)
	assert.Equal(t, Attachment{ID: "42", Filename: "a.png", URL: "https://cdn.example/a.png", Size: 1500}, m.Attachments[0])
	assert.Equal(t, "a.png", m.Attachments[0].Name())
	assert.Equal(t, Attachment{URL: "https://cdn.example/b.png"}, m.Attachments[1])
	assert.Equal(t, "https://cdn.example/b.png", m.Attachments[1].Name())
	assert.Equal(t, Attachment{URL: "5"}, m.Attachments[2])
	assert.Equal(t, Attachment{}, m.Attachments[3])
}

func TestAttachment_UnmarshalJSON(t *testing.T) {
	var m Message
	err := json.Unmarshal([]byte(`{
		"message_id": "1",
		"attachments": [
			{"id": 1100000000000000001, "filename": "a.png", "is_image": true, "size": 2048, "url": "https://cdn.example/a.png"},
			"https://cdn.example/b.png",
			null,
			7
		]
	}`), &m)
	require.NoError(t, err)
	require.Len(t, m.Attachments, 4)
	assert.Equal(t, Attachment{ID: "1100000000000000001", Filename: "a.png", URL: "https://cdn.example/a.png", IsImage: true, Size: 2048}, m.Attachments[0])
	assert.Equal(t, Attachment{URL: "https://cdn.example/b.png"}, m.Attachments[1])
	assert.Equal(t, Attachment{}, m.Attachments[2])
	assert.Equal(t, Attachment{}, m.Attachments[3])
}
