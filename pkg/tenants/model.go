package tenants

import (
	"errors"
	"strconv"

	"logviewer/pkg/logs"
)

// ID is a guild (tenant) snowflake.
type ID uint64

func (id ID) String() string { return strconv.FormatUint(uint64(id), 10) }

var ErrInvalidID = errors.New("invalid tenant id")

// ParseID accepts only ASCII digits that fit in 64 bits.
func ParseID(raw string) (ID, error) {
	if raw == "" {
		return 0, ErrInvalidID
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, ErrInvalidID
		}
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidID
	}
	return ID(v), nil
}

// Tenant is one onboarded guild.
type Tenant struct {
	ID    ID
	BotID uint64 // 0 when no bot id is configured; such tenants fail the bot_id check
	Store logs.Store
}

// BotTag is the value log documents are tagged with by this tenant's bot.
func (t Tenant) BotTag() string {
	if t.BotID == 0 {
		return ""
	}
	return strconv.FormatUint(t.BotID, 10)
}
