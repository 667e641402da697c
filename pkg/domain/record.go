package domain

import (
	"sort"

	"github.com/google/uuid"
)

// RecordType discriminates the closed set of record variants.
type RecordType string

// Record variants recognised by the factory and wire payloads.
const (
	RecordTypeContainer RecordType = "CONTAINER"
	RecordTypeSample    RecordType = "SAMPLE"
	RecordTypeSubSample RecordType = "SUBSAMPLE"
	RecordTypeTemplate  RecordType = "SAMPLE_TEMPLATE"
	RecordTypeBasket    RecordType = "BASKET"
)

// Names of the editable core attributes tracked per record.
const (
	FieldName        = "name"
	FieldDescription = "description"
)

// Record is the capability set shared by all inventory record variants.
// Concrete variants are *Container, *Sample, *SubSample, *Template and
// *Basket; code dispatching on variant uses a type switch over those.
type Record interface {
	Type() RecordType
	Core() *RecordCore
}

// fieldDraft tracks batch-edit state for one editable attribute: whether the
// attribute is currently open for editing, and an uncommitted draft value
// distinct from the last-saved value.
type fieldDraft struct {
	editable bool
	dirty    bool
	value    any
}

// RecordCore carries the state common to every record variant: identity,
// naming, extra fields, attachments, barcodes, the parent location
// back-reference, lazily loaded children, and editable-field tracking.
//
// A record with a non-nil id always has a non-nil globalId and vice versa;
// both are assigned atomically by CommitCreate on first successful save.
// Until then the record is addressed by a client-generated transient key.
type RecordCore struct {
	id           *int64
	globalID     *GlobalID
	transientKey string

	name        string
	description string
	deleted     bool

	extraFields []*ExtraField
	attachments []Attachment
	barcodes    []Barcode

	parentLocation *Location

	children   []Record
	infoLoaded bool

	editing map[string]*fieldDraft
}

// NewRecordCore constructs the core of an unsaved record. The transient key
// stands in for the global identifier until the server assigns one.
func NewRecordCore(name string) RecordCore {
	return RecordCore{
		name:         name,
		transientKey: uuid.NewString(),
		editing:      make(map[string]*fieldDraft),
	}
}

// ID returns the server-assigned numeric id, if the record has been saved.
func (c *RecordCore) ID() (int64, bool) {
	if c.id == nil {
		return 0, false
	}
	return *c.id, true
}

// GlobalID returns the server-assigned global identifier, if saved.
func (c *RecordCore) GlobalID() (GlobalID, bool) {
	if c.globalID == nil {
		return "", false
	}
	return *c.globalID, true
}

// Saved reports whether the record has a server identity.
func (c *RecordCore) Saved() bool {
	return c.id != nil && c.globalID != nil
}

// Key returns the global identifier when saved, and the transient
// client-generated key otherwise. It is stable for the record's lifetime
// once saved.
func (c *RecordCore) Key() string {
	if c.globalID != nil {
		return string(*c.globalID)
	}
	return c.transientKey
}

// Name returns the last-saved name.
func (c *RecordCore) Name() string { return c.name }

// Description returns the last-saved description.
func (c *RecordCore) Description() string { return c.description }

// Deleted reports the server-side deletion flag.
func (c *RecordCore) Deleted() bool { return c.deleted }

// SetDeleted records the server-side deletion flag.
func (c *RecordCore) SetDeleted(deleted bool) { c.deleted = deleted }

// SetEditable opens or closes one attribute for editing. Closing an
// attribute discards any uncommitted draft for it.
func (c *RecordCore) SetEditable(field string, editable bool) {
	d := c.draftFor(field)
	d.editable = editable
	if !editable {
		d.dirty = false
		d.value = nil
	}
}

// IsEditable reports whether the attribute is currently open for editing.
func (c *RecordCore) IsEditable(field string) bool {
	if d, ok := c.editing[field]; ok {
		return d.editable
	}
	return false
}

// SetDraft records an uncommitted value for the attribute and marks it dirty.
// The last-saved value is unaffected until CommitSave or CommitCreate.
func (c *RecordCore) SetDraft(field string, value any) {
	d := c.draftFor(field)
	d.dirty = true
	d.value = value
}

// Draft returns the uncommitted value for the attribute, if one is pending.
func (c *RecordCore) Draft(field string) (any, bool) {
	if d, ok := c.editing[field]; ok && d.dirty {
		return d.value, true
	}
	return nil, false
}

// IsDirty reports whether any core attribute or extra field holds an
// uncommitted draft.
func (c *RecordCore) IsDirty() bool {
	for _, d := range c.editing {
		if d.dirty {
			return true
		}
	}
	for _, f := range c.extraFields {
		if f.IsDirty() {
			return true
		}
	}
	return false
}

// DirtyFields lists the names of core attributes holding uncommitted drafts.
func (c *RecordCore) DirtyFields() []string {
	var names []string
	for name, d := range c.editing {
		if d.dirty {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// DiscardDrafts drops every uncommitted draft, core and extra-field alike.
// Last-saved values are untouched.
func (c *RecordCore) DiscardDrafts() {
	for _, d := range c.editing {
		d.dirty = false
		d.value = nil
	}
	for _, f := range c.extraFields {
		f.discard()
	}
}

// CommitSave applies all pending drafts onto the last-saved state and clears
// dirty tracking. Callers invoke it only after the server confirmed the save;
// a failed save leaves drafts in place.
func (c *RecordCore) CommitSave() {
	for name, d := range c.editing {
		if !d.dirty {
			continue
		}
		switch name {
		case FieldName:
			if v, ok := d.value.(string); ok {
				c.name = v
			}
		case FieldDescription:
			if v, ok := d.value.(string); ok {
				c.description = v
			}
		}
		d.dirty = false
		d.value = nil
	}
	for _, f := range c.extraFields {
		f.commit()
	}
}

// CommitCreate assigns the server identity and commits pending drafts in one
// step. Both halves of the identity are set together; a record never holds
// one without the other.
func (c *RecordCore) CommitCreate(id int64, globalID GlobalID) error {
	if c.Saved() {
		return &ValidationError{Field: "globalId", Reason: "record already saved as " + string(*c.globalID)}
	}
	if id <= 0 {
		return &ValidationError{Field: "id", Reason: "non-positive id"}
	}
	if _, err := ParseGlobalID(string(globalID)); err != nil {
		return err
	}
	c.id = &id
	gid := globalID
	c.globalID = &gid
	c.CommitSave()
	return nil
}

// SetIdentityFromServer installs a server identity during payload hydration.
// Both halves are always set together.
func (c *RecordCore) SetIdentityFromServer(id int64, globalID GlobalID) {
	c.id = &id
	gid := globalID
	c.globalID = &gid
}

// SetNameFromServer installs a server-confirmed name during payload
// hydration, bypassing draft tracking; pending drafts survive the refresh.
func (c *RecordCore) SetNameFromServer(name string) { c.name = name }

// SetDescriptionFromServer installs a server-confirmed description.
func (c *RecordCore) SetDescriptionFromServer(description string) { c.description = description }

// SetExtraFieldsFromServer replaces the extra-field set during payload
// hydration.
func (c *RecordCore) SetExtraFieldsFromServer(fields []*ExtraField) { c.extraFields = fields }

// SetAttachmentsFromServer replaces the attachment references during payload
// hydration.
func (c *RecordCore) SetAttachmentsFromServer(attachments []Attachment) { c.attachments = attachments }

// SetBarcodesFromServer replaces the barcode entries during payload
// hydration.
func (c *RecordCore) SetBarcodesFromServer(barcodes []Barcode) { c.barcodes = barcodes }

// ExtraFields returns the record's typed extra fields.
func (c *RecordCore) ExtraFields() []*ExtraField { return c.extraFields }

// AddExtraField appends a field after checking its name is unique within the
// record.
func (c *RecordCore) AddExtraField(f *ExtraField) error {
	if err := c.checkExtraFieldName(f.Name(), f); err != nil {
		return err
	}
	c.extraFields = append(c.extraFields, f)
	return nil
}

// RenameExtraField renames an existing field. The uniqueness check excludes
// the field being renamed, so re-committing an unchanged name is valid.
func (c *RecordCore) RenameExtraField(f *ExtraField, newName string) error {
	if newName == "" {
		return &ValidationError{Field: "extraFields", Reason: "empty field name"}
	}
	if err := c.checkExtraFieldName(newName, f); err != nil {
		return err
	}
	f.name = newName
	return nil
}

func (c *RecordCore) checkExtraFieldName(name string, exclude *ExtraField) error {
	for _, existing := range c.extraFields {
		if existing == exclude {
			continue
		}
		if existing.Name() == name {
			return &ValidationError{Field: "extraFields", Reason: "duplicate field name " + name}
		}
	}
	return nil
}

// Attachments returns the record's attachment references.
func (c *RecordCore) Attachments() []Attachment { return c.attachments }

// Barcodes returns the record's barcode entries.
func (c *RecordCore) Barcodes() []Barcode { return c.barcodes }

// ParentLocation returns the grid location currently holding this record as
// content, or nil when the record is not slotted.
func (c *RecordCore) ParentLocation() *Location { return c.parentLocation }

// Children returns the lazily loaded child records. A nil slice with
// InfoLoaded() == false means "not yet fetched"; an empty slice with
// InfoLoaded() == true is a valid cached terminal state.
func (c *RecordCore) Children() []Record { return c.children }

// InfoLoaded reports whether children have been fetched at least once.
func (c *RecordCore) InfoLoaded() bool { return c.infoLoaded }

// SetChildren installs fetched children and marks the record loaded, even
// when the fetch returned none.
func (c *RecordCore) SetChildren(children []Record) {
	if children == nil {
		children = []Record{}
	}
	c.children = children
	c.infoLoaded = true
}

func (c *RecordCore) draftFor(field string) *fieldDraft {
	if c.editing == nil {
		c.editing = make(map[string]*fieldDraft)
	}
	d, ok := c.editing[field]
	if !ok {
		d = &fieldDraft{}
		c.editing[field] = d
	}
	return d
}

// Sample is an inventory sample, optionally derived from a template and
// subdivided into sub-samples.
type Sample struct {
	RecordCore
	TemplateID      *int64
	SubSamplesCount int
}

// Type implements Record.
func (s *Sample) Type() RecordType { return RecordTypeSample }

// Core implements Record.
func (s *Sample) Core() *RecordCore { return &s.RecordCore }

// SubSample is one aliquot of a sample; it is the unit actually slotted into
// container locations.
type SubSample struct {
	RecordCore
	ParentSampleID *GlobalID
}

// Type implements Record.
func (s *SubSample) Type() RecordType { return RecordTypeSubSample }

// Core implements Record.
func (s *SubSample) Core() *RecordCore { return &s.RecordCore }

// Template is a sample template: the field layout new samples are created
// from.
type Template struct {
	RecordCore
	Version int
}

// Type implements Record.
func (t *Template) Type() RecordType { return RecordTypeTemplate }

// Core implements Record.
func (t *Template) Core() *RecordCore { return &t.RecordCore }
