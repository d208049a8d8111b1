package logs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Attachment is a file posted in a thread. Current bots store a document
// ({id, filename, is_image, size, url}); older logs hold the bare URL.
// Decoding accepts both and skips fields of an unexpected type instead of
// failing the whole document.
type Attachment struct {
	ID       string `json:"id,omitempty" bson:"id,omitempty"`
	Filename string `json:"filename,omitempty" bson:"filename,omitempty"`
	URL      string `json:"url" bson:"url"`
	IsImage  bool   `json:"is_image,omitempty" bson:"is_image,omitempty"`
	Size     int64  `json:"size,omitempty" bson:"size,omitempty"`
}

// Name is what a reader sees for the link.
func (a Attachment) Name() string {
	if a.Filename != "" {
		return a.Filename
	}
	return a.URL
}

func (a *Attachment) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*a = Attachment{URL: rv.StringValue()}
	case bsontype.EmbeddedDocument:
		doc := rv.Document()
		*a = Attachment{
			ID:       rawString(doc, "id"),
			Filename: rawString(doc, "filename"),
			URL:      rawString(doc, "url"),
		}
		if v, err := doc.LookupErr("is_image"); err == nil {
			a.IsImage, _ = v.BooleanOK()
		}
		if v, err := doc.LookupErr("size"); err == nil {
			a.Size = rawInt(v)
		}
	default:
		*a = Attachment{}
	}
	return nil
}

func rawString(doc bson.Raw, key string) string {
	v, err := doc.LookupErr(key)
	if err != nil {
		return ""
	}
	switch v.Type {
	case bsontype.String:
		return v.StringValue()
	case bsontype.Int32, bsontype.Int64, bsontype.Double:
		return strconv.FormatInt(rawInt(v), 10)
	}
	return ""
}

func rawInt(v bson.RawValue) int64 {
	if i, ok := v.Int64OK(); ok {
		return i
	}
	if i, ok := v.Int32OK(); ok {
		return int64(i)
	}
	if f, ok := v.DoubleOK(); ok {
		return int64(f)
	}
	return 0
}

func (a *Attachment) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = Attachment{}
		return nil
	}
	if b[0] == '"' {
		var url string
		if err := json.Unmarshal(b, &url); err != nil {
			return err
		}
		*a = Attachment{URL: url}
		return nil
	}
	if b[0] != '{' {
		*a = Attachment{}
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	*a = Attachment{
		ID:       jsonString(m["id"]),
		Filename: jsonString(m["filename"]),
		URL:      jsonString(m["url"]),
	}
	a.IsImage, _ = m["is_image"].(bool)
	if n, ok := m["size"].(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			a.Size = i
		} else if f, err := n.Float64(); err == nil {
			a.Size = int64(f)
		}
	}
	return nil
}

func jsonString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
