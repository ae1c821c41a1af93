package applemusic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ServerData is a read-only view over the decoded serialized-server-data
// payload.
//
// The payload is an array of entries shaped roughly like:
//
//	[{"data": {"sections": [
//	    {"containerArtwork": {"dictionary": {"width": 3000, "height": 3000, "url": "..."}},
//	     "items": [{"title": "...", "subtitleLinks": [{"title": "..."}],
//	                "videoArtwork": {"dictionary": {"motionDetailSquare": {"video": "..."}}}}]}
//	]}}]
//
// Any level may be missing or hold the wrong type. Queries skip such nodes
// and return ("", false) when nothing qualifies; they never fail. When an
// object repeats a key, the last occurrence wins.
type ServerData struct {
	root gjson.Result
}

// ParseServerData decodes the payload text.
//
// Returns an error wrapping ErrPayloadNotFound if text is empty or not
// valid JSON.
func ParseServerData(text string) (*ServerData, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: payload is empty", ErrPayloadNotFound)
	}
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", ErrPayloadNotFound)
	}
	return &ServerData{root: gjson.Parse(text)}, nil
}

// ImageArtworkURL returns the cover image URL of the first section whose
// containerArtwork dictionary carries an integer width and height and a
// string URL template. The {w}, {h} and {f} tokens of the template are
// replaced with the width, the height and "jpg".
func (d *ServerData) ImageArtworkURL() (string, bool) {
	for _, section := range d.sections() {
		dict, ok := childObject(section, "containerArtwork", "dictionary")
		if !ok {
			continue
		}
		width, ok := intField(dict, "width")
		if !ok {
			continue
		}
		height, ok := intField(dict, "height")
		if !ok {
			continue
		}
		template, ok := stringField(dict, "url")
		if !ok {
			continue
		}
		return strings.NewReplacer(
			"{w}", strconv.FormatInt(width, 10),
			"{h}", strconv.FormatInt(height, 10),
			"{f}", "jpg",
		).Replace(template), true
	}
	return "", false
}

// VideoPlaylistURL returns the HLS playlist URL of the first item with
// motion artwork. The square rendition is preferred over the wide one.
func (d *ServerData) VideoPlaylistURL() (string, bool) {
	for _, item := range d.items() {
		dict, ok := childObject(item, "videoArtwork", "dictionary")
		if !ok {
			continue
		}
		// An empty or null square entry falls back to the wide one; any
		// other square value is taken as is.
		detail := field(dict, "motionDetailSquare")
		if !truthy(detail) {
			detail = field(dict, "motionDetail")
		}
		if !detail.IsObject() {
			continue
		}
		if video, ok := stringField(detail, "video"); ok {
			return video, true
		}
	}
	return "", false
}

// ArtistName returns the title of the first subtitle link of the first item
// that has one.
func (d *ServerData) ArtistName() (string, bool) {
	for _, item := range d.items() {
		links := field(item, "subtitleLinks")
		if !links.IsArray() {
			continue
		}
		elems := links.Array()
		if len(elems) == 0 || !elems[0].IsObject() {
			continue
		}
		if title, ok := stringField(elems[0], "title"); ok {
			return title, true
		}
	}
	return "", false
}

// AlbumName returns the title of the first item that has one.
func (d *ServerData) AlbumName() (string, bool) {
	for _, item := range d.items() {
		if title, ok := stringField(item, "title"); ok {
			return title, true
		}
	}
	return "", false
}

// sections returns every object in every entry's data.sections, in
// document order.
func (d *ServerData) sections() []gjson.Result {
	if !d.root.IsArray() {
		return nil
	}

	var out []gjson.Result
	for _, entry := range d.root.Array() {
		data, ok := childObject(entry, "data")
		if !ok {
			continue
		}
		sections := field(data, "sections")
		if !sections.IsArray() {
			continue
		}
		for _, section := range sections.Array() {
			if section.IsObject() {
				out = append(out, section)
			}
		}
	}
	return out
}

// items returns every object in every section's items, in document order.
func (d *ServerData) items() []gjson.Result {
	var out []gjson.Result
	for _, section := range d.sections() {
		items := field(section, "items")
		if !items.IsArray() {
			continue
		}
		for _, item := range items.Array() {
			if item.IsObject() {
				out = append(out, item)
			}
		}
	}
	return out
}

// childObject follows keys one level at a time and succeeds only if every
// step lands on an object.
func childObject(r gjson.Result, keys ...string) (gjson.Result, bool) {
	for _, key := range keys {
		if !r.IsObject() {
			return gjson.Result{}, false
		}
		r = field(r, key)
	}
	return r, r.IsObject()
}

// field returns the value of key in obj, taking the last occurrence when
// the key is repeated. It is empty for non-objects and missing keys.
func field(obj gjson.Result, key string) gjson.Result {
	var v gjson.Result
	if !obj.IsObject() {
		return v
	}
	obj.ForEach(func(k, value gjson.Result) bool {
		if k.Str == key {
			v = value
		}
		return true
	})
	return v
}

// truthy reports whether v would count as set in a plain "a or b"
// fallback: missing, null, false, 0, "" and empty arrays or objects do not.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	}
	nonEmpty := false
	v.ForEach(func(_, _ gjson.Result) bool {
		nonEmpty = true
		return false
	})
	return nonEmpty
}

func stringField(obj gjson.Result, key string) (string, bool) {
	v := field(obj, key)
	if v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

// intField accepts only integral JSON numbers: 3000 qualifies, 3000.0 and
// 3e3 do not.
func intField(obj gjson.Result, key string) (int64, bool) {
	v := field(obj, key)
	if v.Type != gjson.Number {
		return 0, false
	}
	n, err := strconv.ParseInt(v.Raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
