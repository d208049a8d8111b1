package logs

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Everyone is the whitelist sentinel granting every authenticated viewer.
const Everyone = "everyone"

// Whitelist is a set of snowflake ids (users and roles share one namespace)
// plus the Everyone sentinel. The zero value is an empty whitelist.
type Whitelist struct {
	ids      map[uint64]struct{}
	everyone bool
}

func NewWhitelist(ids ...uint64) Whitelist {
	w := Whitelist{ids: make(map[uint64]struct{}, len(ids))}
	for _, id := range ids {
		w.ids[id] = struct{}{}
	}
	return w
}

// WithEveryone returns a copy that also carries the sentinel.
func (w Whitelist) WithEveryone() Whitelist {
	out := w.Union(Whitelist{})
	out.everyone = true
	return out
}

func (w Whitelist) Has(id uint64) bool {
	_, ok := w.ids[id]
	return ok
}

func (w Whitelist) Everyone() bool { return w.everyone }

func (w Whitelist) Len() int { return len(w.ids) }

// Union never mutates either operand.
func (w Whitelist) Union(o Whitelist) Whitelist {
	out := Whitelist{ids: make(map[uint64]struct{}, len(w.ids)+len(o.ids)), everyone: w.everyone || o.everyone}
	for id := range w.ids {
		out.ids[id] = struct{}{}
	}
	for id := range o.ids {
		out.ids[id] = struct{}{}
	}
	return out
}

// Entries lists the members as strings in a stable order, sentinel last.
func (w Whitelist) Entries() []string {
	ids := make([]uint64, 0, len(w.ids))
	for id := range w.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		out = append(out, strconv.FormatUint(id, 10))
	}
	if w.everyone {
		out = append(out, Everyone)
	}
	return out
}

// ParseWhitelist converts a stored oauth_whitelist array. Integer entries are
// ids and the literal "everyone" (any case when fold is set) is the sentinel.
// Everything else, numeric strings and floats included, is dropped.
func ParseWhitelist(raw []any, fold bool) Whitelist {
	w := Whitelist{ids: make(map[uint64]struct{}, len(raw))}
	for _, v := range raw {
		switch x := v.(type) {
		case int32:
			if x >= 0 {
				w.ids[uint64(x)] = struct{}{}
			}
		case int64:
			if x >= 0 {
				w.ids[uint64(x)] = struct{}{}
			}
		case int:
			if x >= 0 {
				w.ids[uint64(x)] = struct{}{}
			}
		case uint64:
			w.ids[x] = struct{}{}
		case json.Number:
			if id, err := strconv.ParseUint(x.String(), 10, 64); err == nil {
				w.ids[id] = struct{}{}
			}
		case string:
			if x == Everyone || (fold && strings.EqualFold(x, Everyone)) {
				w.everyone = true
			}
		}
	}
	return w
}
