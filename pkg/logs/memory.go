package logs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// MemoryStore serves a fixed set of documents. It backs file:// tenants in
// development and stands in for Mongo in tests.
type MemoryStore struct {
	logs    map[string]LogDocument
	configs map[uint64]TenantConfig
}

func NewMemoryStore(docs []LogDocument, configs []TenantConfig) *MemoryStore {
	m := &MemoryStore{
		logs:    make(map[string]LogDocument, len(docs)),
		configs: make(map[uint64]TenantConfig, len(configs)),
	}
	for _, d := range docs {
		m.logs[d.Key] = d
	}
	for _, c := range configs {
		m.configs[uint64(c.BotID)] = c
	}
	return m
}

type seedFile struct {
	Logs   []LogDocument  `json:"logs"`
	Config []TenantConfig `json:"config"`
}

// LoadFile reads {"logs": [...], "config": [...]} in the same shape the bot
// stores in Mongo.
func LoadFile(path string, opts Options) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	dec.UseNumber()
	var seed seedFile
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for i := range seed.Logs {
		seed.Logs[i].Whitelist = ParseWhitelist(seed.Logs[i].RawWhitelist, opts.EveryoneFold)
	}
	for i := range seed.Config {
		seed.Config[i].Whitelist = ParseWhitelist(seed.Config[i].RawWhitelist, opts.EveryoneFold)
	}
	return NewMemoryStore(seed.Logs, seed.Config), nil
}

func (m *MemoryStore) FindLog(ctx context.Context, key string) (LogDocument, bool, error) {
	if err := ctx.Err(); err != nil {
		return LogDocument{}, false, err
	}
	d, ok := m.logs[key]
	return d, ok, nil
}

func (m *MemoryStore) FindConfig(ctx context.Context, botID uint64) (TenantConfig, bool, error) {
	if err := ctx.Err(); err != nil {
		return TenantConfig{}, false, err
	}
	c, ok := m.configs[botID]
	return c, ok, nil
}

func (m *MemoryStore) Close(context.Context) error { return nil }
