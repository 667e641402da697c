package domain

import "strconv"

// ExtraFieldKind discriminates the typed extra-field variants.
type ExtraFieldKind string

// Supported extra-field kinds.
const (
	ExtraFieldText   ExtraFieldKind = "TEXT"
	ExtraFieldNumber ExtraFieldKind = "NUMBER"
)

// ExtraField is one user-defined typed field on a record. Like core
// attributes it carries an editable flag and an uncommitted draft value
// distinct from the last-saved content.
type ExtraField struct {
	id   *int64
	name string
	kind ExtraFieldKind

	content  string
	editable bool
	draft    *string
}

// NewExtraField constructs an extra field with the given last-saved content.
func NewExtraField(name string, kind ExtraFieldKind, content string) *ExtraField {
	return &ExtraField{name: name, kind: kind, content: content}
}

// HydrateExtraField builds a field from a server payload, carrying the
// server-assigned id when present.
func HydrateExtraField(id *int64, name string, kind ExtraFieldKind, content string) *ExtraField {
	f := NewExtraField(name, kind, content)
	f.id = id
	return f
}

// ID returns the server-assigned field id, if saved.
func (f *ExtraField) ID() (int64, bool) {
	if f.id == nil {
		return 0, false
	}
	return *f.id, true
}

// Name returns the field name. Renaming goes through
// RecordCore.RenameExtraField so uniqueness is enforced.
func (f *ExtraField) Name() string { return f.name }

// Kind returns the field's type tag.
func (f *ExtraField) Kind() ExtraFieldKind { return f.kind }

// Content returns the last-saved content.
func (f *ExtraField) Content() string { return f.content }

// SetEditable opens or closes the field for editing; closing discards any
// pending draft.
func (f *ExtraField) SetEditable(editable bool) {
	f.editable = editable
	if !editable {
		f.draft = nil
	}
}

// IsEditable reports whether the field is open for editing.
func (f *ExtraField) IsEditable() bool { return f.editable }

// SetDraft records an uncommitted value. NUMBER fields reject non-numeric
// drafts before any request is issued.
func (f *ExtraField) SetDraft(value string) error {
	if f.kind == ExtraFieldNumber {
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return &ValidationError{Field: f.name, Reason: "not a number: " + value}
		}
	}
	v := value
	f.draft = &v
	return nil
}

// Draft returns the pending draft value, if any.
func (f *ExtraField) Draft() (string, bool) {
	if f.draft == nil {
		return "", false
	}
	return *f.draft, true
}

// IsDirty reports whether the field holds an uncommitted draft.
func (f *ExtraField) IsDirty() bool { return f.draft != nil }

func (f *ExtraField) commit() {
	if f.draft != nil {
		f.content = *f.draft
		f.draft = nil
	}
}

func (f *ExtraField) discard() { f.draft = nil }

// Attachment references a file attached to a record. Content bytes are
// reachable only through the REST API, never held client-side.
type Attachment struct {
	ID          int64
	Name        string
	ContentType string
	Size        int64
}

// Barcode is one barcode entry on a record.
type Barcode struct {
	Data        string
	Format      string
	Description string
}
