package logs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find log decodes whitelist", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB, Options{})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "modmail_bot.logs", mtest.FirstBatch, bson.D{
			{Key: "key", Value: "abc123"},
			{Key: "bot_id", Value: "555"},
			{Key: "open", Value: false},
			{Key: "messages", Value: bson.A{
				bson.D{{Key: "message_id", Value: "1"}, {Key: "content", Value: "hi"}, {Key: "author", Value: bson.D{{Key: "id", Value: "7"}, {Key: "name", Value: "alice"}}}},
			}},
			{Key: "oauth_whitelist", Value: bson.A{int64(7), int32(8), "everyone"}},
		}))

		doc, ok, err := s.FindLog(context.Background(), "abc123")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "555", doc.BotID)
		assert.True(t, doc.Whitelist.Has(7))
		assert.True(t, doc.Whitelist.Has(8))
		assert.True(t, doc.Whitelist.Everyone())
		require.Len(t, doc.Messages, 1)
		assert.Equal(t, "alice", doc.Messages[0].Author.Name)
	})

	mt.Run("find log with object and legacy attachments", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB, Options{})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "modmail_bot.logs", mtest.FirstBatch, bson.D{
			{Key: "key", Value: "att1"},
			{Key: "bot_id", Value: "555"},
			{Key: "messages", Value: bson.A{
				bson.D{
					{Key: "message_id", Value: "1"},
					{Key: "content", Value: "see file"},
					{Key: "author", Value: bson.D{{Key: "id", Value: "9"}, {Key: "name", Value: "bob"}}},
					{Key: "attachments", Value: bson.A{
						bson.D{
							{Key: "id", Value: int64(1100000000000000001)},
							{Key: "filename", Value: "screenshot.png"},
							{Key: "is_image", Value: true},
							{Key: "size", Value: int32(2048)},
							{Key: "url", Value: "https://cdn.discordapp.com/attachments/1/2/screenshot.png"},
						},
						"https://cdn.discordapp.com/attachments/1/3/old.txt",
					}},
				},
			}},
		}))

		doc, ok, err := s.FindLog(context.Background(), "att1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, doc.Messages, 1)
		atts := doc.Messages[0].Attachments
		require.Len(t, atts, 2)
		assert.Equal(t, Attachment{
			ID:       "1100000000000000001",
			Filename: "screenshot.png",
			URL:      "https://cdn.discordapp.com/attachments/1/2/screenshot.png",
			IsImage:  true,
			Size:     2048,
		}, atts[0])
		assert.Equal(t, Attachment{URL: "https://cdn.discordapp.com/attachments/1/3/old.txt"}, atts[1])
	})

	mt.Run("missing log is absence", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB, Options{})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "modmail_bot.logs", mtest.FirstBatch))

		_, ok, err := s.FindLog(context.Background(), "missing")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	mt.Run("driver error is not absence", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB, Options{})
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on modmail_bot",
		}))

		_, ok, err := s.FindLog(context.Background(), "abc123")
		assert.Error(t, err)
		assert.False(t, ok)
	})

	mt.Run("find config", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB, Options{})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "modmail_bot.config", mtest.FirstBatch, bson.D{
			{Key: "bot_id", Value: int64(555)},
			{Key: "oauth_whitelist", Value: bson.A{int64(3)}},
		}))

		cfg, ok, err := s.FindConfig(context.Background(), 555)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(555), cfg.BotID)
		assert.True(t, cfg.Whitelist.Has(3))
		assert.False(t, cfg.Whitelist.Everyone())
	})

	mt.Run("config without whitelist field", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB, Options{})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "modmail_bot.config", mtest.FirstBatch, bson.D{
			{Key: "bot_id", Value: int64(555)},
		}))

		cfg, ok, err := s.FindConfig(context.Background(), 555)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 0, cfg.Whitelist.Len())
	})
}
