package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var ErrRoleLookup = errors.New("role lookup failed")

// DiscordRoles reads guild member roles from the Discord REST API with the
// bot's token.
type DiscordRoles struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewDiscordRoles(baseURL, token string, client *http.Client) *DiscordRoles {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &DiscordRoles{baseURL: strings.TrimRight(baseURL, "/"), token: token, client: client}
}

// RoleIDs returns the member's roles. A user who is not in the guild has no
// roles; that is not an error.
func (d *DiscordRoles) RoleIDs(ctx context.Context, guildID, userID uint64) ([]uint64, error) {
	url := fmt.Sprintf("%s/guilds/%d/members/%d", d.baseURL, guildID, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bot "+d.token)
	req.Header.Set("Accept", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoleLookup, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return []uint64{}, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: discord status %d", ErrRoleLookup, resp.StatusCode)
	}
	var member struct {
		Roles []string `json:"roles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&member); err != nil {
		return nil, fmt.Errorf("%w: decode member: %v", ErrRoleLookup, err)
	}
	roles := make([]uint64, 0, len(member.Roles))
	for _, r := range member.Roles {
		if id, err := strconv.ParseUint(r, 10, 64); err == nil {
			roles = append(roles, id)
		}
	}
	return roles, nil
}
