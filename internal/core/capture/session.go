package capture

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/example/fieldforms/internal/core/payload"
)

// Row is one repeater row in the arena. A row acquires its id at creation
// time and keeps it for the life of the capture session, so edits to one row
// are never attributed to another.
type Row struct {
	ID     string
	Values map[string]any
}

// Session is the editable state of the active submission. Exactly one
// session is active at a time; the identity session decides what it is.
type Session struct {
	pageType payload.PageType
	index    *fieldIndex

	fields map[string]any
	groups map[string][]*Row

	sketch      *payload.Attachment
	sketchDirty bool
	photos      []payload.Attachment

	// newRowID is injectable for deterministic tests.
	newRowID func() string
}

// NewSession returns a blank capture session for the given page type with one
// starter row per repeater group.
func NewSession(pt payload.PageType) *Session {
	s := &Session{newRowID: uuid.NewString}
	s.SelectPageType(pt)
	s.fields = make(map[string]any)
	return s
}

// PageType returns the currently selected page type.
func (s *Session) PageType() payload.PageType {
	return s.pageType
}

// SelectPageType switches the active record type. Repeater groups are rebuilt
// for the new page with one starter row each; scalar fields keep their values
// and are filtered by page at snapshot time.
func (s *Session) SelectPageType(pt payload.PageType) {
	s.pageType = pt
	s.index = newFieldIndex(FieldsFor(pt))
	s.groups = make(map[string][]*Row)
	for _, g := range GroupsFor(pt) {
		s.groups[g.Name] = []*Row{s.blankRow()}
	}
}

// SetField resolves the name against the page's field registry and stores the
// coerced value. Unresolvable names are an error for direct capture input.
func (s *Session) SetField(name string, value any) error {
	spec, ok := s.index.resolve(name)
	if !ok {
		return fmt.Errorf("field %q is not asked on page type %s", name, s.pageType)
	}
	s.fields[payload.Key(spec.Label)] = s.coerceFor(spec, value)
	return nil
}

// AddRow appends a new row to a repeater group and returns it.
func (s *Session) AddRow(group string) (*Row, error) {
	name := payload.Key(group)
	if _, ok := s.groups[name]; !ok {
		return nil, fmt.Errorf("repeater group %q is not valid for page type %s", group, s.pageType)
	}
	row := s.blankRow()
	s.groups[name] = append(s.groups[name], row)
	return row, nil
}

// RemoveRow deletes a row from a group by its row id.
func (s *Session) RemoveRow(group, rowID string) error {
	name := payload.Key(group)
	rows, ok := s.groups[name]
	if !ok {
		return fmt.Errorf("repeater group %q is not valid for page type %s", group, s.pageType)
	}
	for i, r := range rows {
		if r.ID == rowID {
			s.groups[name] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("row %s not found in group %s", rowID, name)
}

// Rows returns the ordered rows of a group.
func (s *Session) Rows(group string) []*Row {
	return s.groups[payload.Key(group)]
}

// SetRowValue writes one cell of a row, addressed by row id.
func (s *Session) SetRowValue(group, rowID, key string, value any) error {
	name := payload.Key(group)
	rows, ok := s.groups[name]
	if !ok {
		return fmt.Errorf("repeater group %q is not valid for page type %s", group, s.pageType)
	}
	nk, field, ok := s.rowField(name, key)
	if !ok {
		return fmt.Errorf("key %q is not part of a %s row", key, name)
	}
	for _, r := range rows {
		if r.ID == rowID {
			r.Values[nk] = coerceRow(field, value)
			return nil
		}
	}
	return fmt.Errorf("row %s not found in group %s", rowID, name)
}

// SetSketch replaces the sketch with a freshly drawn image and marks the
// sketch dirty.
func (s *Session) SetSketch(att payload.Attachment) {
	s.sketch = &att
	s.sketchDirty = true
}

// RestoreSketch installs a previously stored sketch without marking it dirty,
// so a save that doesn't touch the drawing surface carries it forward
// unchanged instead of overwriting it with a blank canvas.
func (s *Session) RestoreSketch(att *payload.Attachment) {
	s.sketch = att
	s.sketchDirty = false
}

// ClearSketch wipes the drawing surface. The wipe counts as drawing.
func (s *Session) ClearSketch() {
	s.sketch = nil
	s.sketchDirty = true
}

// SketchDirty reports whether the technician has drawn since the session was
// seeded.
func (s *Session) SketchDirty() bool {
	return s.sketchDirty
}

// AddPhoto appends a photo attachment, enforcing the per-submission cap.
func (s *Session) AddPhoto(att payload.Attachment) error {
	if len(s.photos) >= payload.MaxPhotos {
		return fmt.Errorf("at most %d photos per submission", payload.MaxPhotos)
	}
	s.photos = append(s.photos, att)
	return nil
}

// Photos returns the ordered photo attachments.
func (s *Session) Photos() []payload.Attachment {
	return s.photos
}

// Raw snapshots the session into the un-normalized shape the normalizer
// consumes. Fields are scoped to the current page type: absence of a key
// means "not asked on this page type", not "cleared".
func (s *Session) Raw() payload.RawCapture {
	fields := make(map[string]any)
	for _, spec := range FieldsFor(s.pageType) {
		key := payload.Key(spec.Label)
		if v, ok := s.fields[key]; ok {
			fields[key] = v
		}
	}

	repeaters := make(map[string][]payload.Row, len(s.groups))
	for name, rows := range s.groups {
		out := make([]payload.Row, 0, len(rows))
		for _, r := range rows {
			row := make(payload.Row, len(r.Values))
			for k, v := range r.Values {
				row[k] = v
			}
			out = append(out, row)
		}
		repeaters[name] = out
	}

	photos := make([]payload.Attachment, len(s.photos))
	copy(photos, s.photos)

	return payload.RawCapture{
		Fields:    fields,
		Repeaters: repeaters,
		Sketch:    s.sketch,
		Photos:    photos,
	}
}

// Populate seeds the session from a stored submission: page type first (it
// determines what is addressable), then repeaters, then scalar fields, then
// the sketch. Keys that resolve nowhere are skipped; population never fails
// halfway.
func (s *Session) Populate(sub *payload.Submission) {
	pt, _ := payload.ParsePageType(sub.PageType)
	s.SelectPageType(pt)

	for _, g := range GroupsFor(pt) {
		stored := sub.Repeaters[g.Name]
		if len(stored) == 0 {
			continue
		}
		rows := make([]*Row, 0, len(stored))
		for _, storedRow := range stored {
			row := s.blankRow()
			for k, v := range storedRow {
				if nk, field, ok := s.rowField(g.Name, k); ok {
					row.Values[nk] = coerceRow(field, v)
				}
			}
			rows = append(rows, row)
		}
		s.groups[g.Name] = rows
	}

	s.fields = make(map[string]any)
	for k, v := range sub.Fields {
		spec, ok := s.index.resolve(k)
		if !ok {
			continue
		}
		s.fields[payload.Key(spec.Label)] = s.coerceFor(spec, v)
	}

	s.RestoreSketch(sub.Sketch)

	s.photos = make([]payload.Attachment, len(sub.Photos))
	copy(s.photos, sub.Photos)
}

func (s *Session) blankRow() *Row {
	return &Row{ID: s.newRowID(), Values: make(map[string]any)}
}

func (s *Session) coerceFor(spec *FieldSpec, value any) any {
	if spec.Checkbox {
		return payload.IsChecked(value)
	}
	return payload.Coerce(value)
}

func coerceRow(field *RowField, value any) any {
	if field.Checkbox {
		return payload.IsChecked(value)
	}
	return payload.Coerce(value)
}

// rowField canonicalizes a row key and resolves it against the group's schema.
func (s *Session) rowField(group, key string) (string, *RowField, bool) {
	nk := payload.Key(key)
	for _, g := range GroupsFor(s.pageType) {
		if g.Name != group {
			continue
		}
		for i := range g.Fields {
			if payload.Key(g.Fields[i].Label) == nk {
				return nk, &g.Fields[i], true
			}
		}
	}
	return "", nil, false
}
