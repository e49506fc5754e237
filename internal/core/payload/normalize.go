package payload

import (
	"fmt"
	"strings"
)

// Key canonicalizes a field, repeater-group, or row key: non-breaking spaces
// are folded to regular spaces, runs of whitespace collapse to one space, and
// leading/trailing space is trimmed. Visually identical labels always collide
// to the same key.
func Key(k string) string {
	k = strings.ReplaceAll(k, "\u00a0", " ")
	return strings.Join(strings.Fields(k), " ")
}

// Coerce folds a raw value into the two wire types: bool stays bool,
// everything else becomes a string. nil becomes the empty string, never the
// literal text "null" or "undefined".
func Coerce(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		return t
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

// IsChecked interprets a checkbox-like value.
func IsChecked(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	default:
		s := strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", t)))
		switch s {
		case "true", "yes", "y", "1", "checked", "on":
			return true
		}
		return false
	}
}

// Normalize canonicalizes a raw capture snapshot into a Submission. It is a
// pure function: it never mutates its inputs, performs no I/O, and produces
// identical output for identical input so queued replays and equality checks
// are stable.
func Normalize(raw RawCapture, id Identity, pageType PageType) Submission {
	fields := make(map[string]any, len(raw.Fields))
	for k, v := range raw.Fields {
		nk := Key(k)
		if nk == "" {
			continue
		}
		fields[nk] = Coerce(v)
	}

	repeaters := make(map[string][]Row, len(raw.Repeaters))
	for group, rows := range raw.Repeaters {
		ng := Key(group)
		if ng == "" {
			continue
		}
		out := make([]Row, 0, len(rows))
		for _, row := range rows {
			nr := normalizeRow(row)
			if rowEmpty(nr) {
				continue
			}
			out = append(out, nr)
		}
		repeaters[ng] = out
	}

	photos := raw.Photos
	if len(photos) > MaxPhotos {
		photos = photos[:MaxPhotos]
	}
	outPhotos := make([]Attachment, len(photos))
	copy(outPhotos, photos)

	var sketch *Attachment
	if raw.Sketch != nil {
		s := *raw.Sketch
		sketch = &s
	}

	return Submission{
		SubmissionID: strings.TrimSpace(id.SubmissionID),
		PageType:     string(pageType),
		DeviceID:     strings.TrimSpace(id.DeviceID),
		CreatedAt:    id.CreatedAt,
		UpdatedAt:    id.UpdatedAt,
		Fields:       fields,
		Repeaters:    repeaters,
		Sketch:       sketch,
		Photos:       outPhotos,
	}
}

func normalizeRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		nk := Key(k)
		if nk == "" {
			continue
		}
		out[nk] = Coerce(v)
	}
	return out
}

// rowEmpty reports whether every value in the row is empty or false. Such
// rows are starter rows the technician never touched and are dropped.
func rowEmpty(row Row) bool {
	for _, v := range row {
		switch t := v.(type) {
		case bool:
			if t {
				return false
			}
		case string:
			if strings.TrimSpace(t) != "" {
				return false
			}
		}
	}
	return true
}
