// Package core implements the client-side inventory stores: record factory,
// paginated search fetcher, search/tree view state, move orchestration, and
// basket management. A RootStore wires them together once per session.
package core

import (
	"encoding/json"
	"sync"

	"inventoryclient/internal/api"
	"inventoryclient/pkg/domain"
)

// FactoryPolicy selects how the factory treats repeated fetches of the same
// global identifier.
type FactoryPolicy int

const (
	// Memoised updates the cached instance in place and returns the same
	// pointer, preserving identity for observers bound to it.
	Memoised FactoryPolicy = iota
	// AlwaysNew constructs a fresh instance on every call, for callers that
	// need an isolated, disposable copy.
	AlwaysNew
)

// RecordCache persists raw record payloads across sessions so a factory can
// warm-start its pool. Implementations live under internal/infra/cache.
type RecordCache interface {
	Put(globalID string, payload []byte) error
	All() (map[string][]byte, error)
	Close() error
}

// Factory constructs the correct record variant from a server payload,
// dispatching on the recordType/cType discriminants. Under the Memoised
// policy it is also the mechanism by which every store converges on the same
// record instance.
type Factory struct {
	mu     sync.Mutex
	policy FactoryPolicy
	pool   map[domain.GlobalID]domain.Record
	cache  RecordCache
}

// NewFactory constructs a factory with the given policy.
func NewFactory(policy FactoryPolicy) *Factory {
	return &Factory{
		policy: policy,
		pool:   make(map[domain.GlobalID]domain.Record),
	}
}

// AttachCache writes every memoised payload through to c and enables
// WarmStart.
func (f *Factory) AttachCache(c RecordCache) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = c
}

// NewRecord builds or refreshes a record from a server payload. A malformed
// payload (missing or unknown discriminant) fails with *domain.ParseError and
// never coerces to a default variant.
func (f *Factory) NewRecord(payload api.RecordPayload) (domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, err := f.newRecordLocked(payload, f.policy)
	if err != nil {
		return nil, err
	}
	f.writeThrough(payload)
	return rec, nil
}

// Reinstantiate builds a fresh instance from a post-mutation payload and
// replaces any pooled instance under the same global identifier. The returned
// record has a new object identity; the previous instance keeps its state and
// is left for its holders to release.
func (f *Factory) Reinstantiate(payload api.RecordPayload) (domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, err := f.newRecordLocked(payload, AlwaysNew)
	if err != nil {
		return nil, err
	}
	if gid, ok := rec.Core().GlobalID(); ok {
		f.pool[gid] = rec
	}
	f.writeThrough(payload)
	return rec, nil
}

// Lookup returns the pooled instance for the identifier, if any.
func (f *Factory) Lookup(globalID domain.GlobalID) (domain.Record, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.pool[globalID]
	return rec, ok
}

// PoolSize returns the number of pooled records.
func (f *Factory) PoolSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pool)
}

// WarmStart replays every cached payload through the factory, seeding the
// pool from a previous session. Payloads that no longer parse are skipped.
func (f *Factory) WarmStart() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cache == nil {
		return 0, nil
	}
	all, err := f.cache.All()
	if err != nil {
		return 0, err
	}
	loaded := 0
	for _, raw := range all {
		var payload api.RecordPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			continue
		}
		if _, err := f.newRecordLocked(payload, Memoised); err != nil {
			continue
		}
		loaded++
	}
	return loaded, nil
}

func (f *Factory) writeThrough(payload api.RecordPayload) {
	if f.cache == nil || f.policy != Memoised || payload.GlobalID == "" {
		return
	}
	if raw, err := json.Marshal(payload); err == nil {
		_ = f.cache.Put(payload.GlobalID, raw)
	}
}

// newRecordLocked is the construction path proper. It recurses for location
// contents, so it must be entered with f.mu held.
func (f *Factory) newRecordLocked(payload api.RecordPayload, policy FactoryPolicy) (domain.Record, error) {
	if payload.GlobalID == "" {
		return nil, &domain.ParseError{Field: "globalId", Got: "", Reason: "missing"}
	}
	gid, err := domain.ParseGlobalID(payload.GlobalID)
	if err != nil {
		return nil, err
	}
	if payload.ID == nil {
		return nil, &domain.ParseError{Field: "id", Got: payload.GlobalID, Reason: "missing"}
	}
	if payload.RecordType == "" {
		return nil, &domain.ParseError{Field: "recordType", Got: "", Reason: "missing discriminant"}
	}

	switch domain.RecordType(payload.RecordType) {
	case domain.RecordTypeContainer:
		return f.buildContainer(payload, gid, policy)
	case domain.RecordTypeSample:
		return f.buildSample(payload, gid, policy)
	case domain.RecordTypeSubSample:
		return f.buildSubSample(payload, gid, policy)
	case domain.RecordTypeTemplate:
		return f.buildTemplate(payload, gid, policy)
	case domain.RecordTypeBasket:
		return f.buildBasket(payload, gid, policy)
	default:
		return nil, &domain.ParseError{Field: "recordType", Got: payload.RecordType}
	}
}

// pooled returns the existing instance for gid when the policy allows reuse
// and the pooled variant matches want. A variant mismatch discards the stale
// instance; the server is authoritative.
func (f *Factory) pooled(gid domain.GlobalID, want domain.RecordType, policy FactoryPolicy) domain.Record {
	if policy != Memoised {
		return nil
	}
	existing, ok := f.pool[gid]
	if !ok {
		return nil
	}
	if existing.Type() != want {
		delete(f.pool, gid)
		return nil
	}
	return existing
}

func (f *Factory) adopt(gid domain.GlobalID, rec domain.Record, policy FactoryPolicy) {
	if policy == Memoised {
		f.pool[gid] = rec
	}
}

func (f *Factory) buildContainer(payload api.RecordPayload, gid domain.GlobalID, policy FactoryPolicy) (domain.Record, error) {
	cType := payload.CType
	if cType == "" {
		if !gid.IsBench() {
			return nil, &domain.ParseError{Field: "cType", Got: "", Reason: "missing for container " + payload.GlobalID}
		}
		// A bench presents as a flat list of slotted items.
		cType = string(domain.ContainerList)
	}
	switch domain.ContainerType(cType) {
	case domain.ContainerList, domain.ContainerGrid, domain.ContainerImage:
	default:
		return nil, &domain.ParseError{Field: "cType", Got: cType}
	}

	var c *domain.Container
	if existing := f.pooled(gid, domain.RecordTypeContainer, policy); existing != nil {
		c = existing.(*domain.Container)
	} else {
		c = domain.NewListContainer(payload.Name)
		f.adopt(gid, c, policy)
	}
	if err := applyCore(c.Core(), payload, gid); err != nil {
		return nil, err
	}
	setContainerShape(c, domain.ContainerType(cType), payload.GridLayout, gid.IsBench())

	if payload.Locations != nil {
		c.ClearLocations()
		for _, lp := range *payload.Locations {
			loc, err := c.AddLocation(lp.ID, lp.CoordX, lp.CoordY)
			if err != nil {
				return nil, err
			}
			if lp.Content != nil {
				content, err := f.newRecordLocked(*lp.Content, policy)
				if err != nil {
					return nil, err
				}
				loc.SetContent(content)
			}
		}
	} else {
		// A grid's slots exist as soon as the layout is known, even when
		// the payload carried no locations key.
		c.EnsureGridLocations()
	}
	return c, nil
}

func (f *Factory) buildSample(payload api.RecordPayload, gid domain.GlobalID, policy FactoryPolicy) (domain.Record, error) {
	var s *domain.Sample
	if existing := f.pooled(gid, domain.RecordTypeSample, policy); existing != nil {
		s = existing.(*domain.Sample)
	} else {
		s = &domain.Sample{RecordCore: domain.NewRecordCore(payload.Name)}
		f.adopt(gid, s, policy)
	}
	if err := applyCore(s.Core(), payload, gid); err != nil {
		return nil, err
	}
	s.TemplateID = payload.TemplateID
	s.SubSamplesCount = payload.SubSamplesCount
	return s, nil
}

func (f *Factory) buildSubSample(payload api.RecordPayload, gid domain.GlobalID, policy FactoryPolicy) (domain.Record, error) {
	var s *domain.SubSample
	if existing := f.pooled(gid, domain.RecordTypeSubSample, policy); existing != nil {
		s = existing.(*domain.SubSample)
	} else {
		s = &domain.SubSample{RecordCore: domain.NewRecordCore(payload.Name)}
		f.adopt(gid, s, policy)
	}
	if err := applyCore(s.Core(), payload, gid); err != nil {
		return nil, err
	}
	if payload.ParentSampleGlobalID != "" {
		parent, err := domain.ParseGlobalID(payload.ParentSampleGlobalID)
		if err != nil {
			return nil, err
		}
		s.ParentSampleID = &parent
	}
	return s, nil
}

func (f *Factory) buildTemplate(payload api.RecordPayload, gid domain.GlobalID, policy FactoryPolicy) (domain.Record, error) {
	var t *domain.Template
	if existing := f.pooled(gid, domain.RecordTypeTemplate, policy); existing != nil {
		t = existing.(*domain.Template)
	} else {
		t = &domain.Template{RecordCore: domain.NewRecordCore(payload.Name)}
		f.adopt(gid, t, policy)
	}
	if err := applyCore(t.Core(), payload, gid); err != nil {
		return nil, err
	}
	t.Version = payload.Version
	return t, nil
}

func (f *Factory) buildBasket(payload api.RecordPayload, gid domain.GlobalID, policy FactoryPolicy) (domain.Record, error) {
	var b *domain.Basket
	if existing := f.pooled(gid, domain.RecordTypeBasket, policy); existing != nil {
		b = existing.(*domain.Basket)
	} else {
		b = domain.NewBasket(payload.Name)
		f.adopt(gid, b, policy)
	}
	if err := applyCore(b.Core(), payload, gid); err != nil {
		return nil, err
	}
	return b, nil
}

// applyCore merges the payload's shared attributes onto the record core.
// Committed values are overwritten; uncommitted drafts are preserved.
func applyCore(core *domain.RecordCore, payload api.RecordPayload, gid domain.GlobalID) error {
	if existing, ok := core.GlobalID(); ok && existing != gid {
		return &domain.ParseError{
			Field:  "globalId",
			Got:    string(gid),
			Reason: "conflicts with pooled record " + string(existing),
		}
	}
	core.SetIdentityFromServer(*payload.ID, gid)
	core.SetNameFromServer(payload.Name)
	core.SetDescriptionFromServer(payload.Description)
	core.SetDeleted(payload.Deleted)

	if payload.ExtraFields != nil {
		fields := make([]*domain.ExtraField, 0, len(payload.ExtraFields))
		for _, fp := range payload.ExtraFields {
			kind := domain.ExtraFieldKind(fp.Type)
			if kind != domain.ExtraFieldText && kind != domain.ExtraFieldNumber {
				return &domain.ParseError{Field: "extraFields.type", Got: fp.Type}
			}
			fields = append(fields, domain.HydrateExtraField(fp.ID, fp.Name, kind, fp.Content))
		}
		core.SetExtraFieldsFromServer(fields)
	}
	if payload.Attachments != nil {
		attachments := make([]domain.Attachment, 0, len(payload.Attachments))
		for _, ap := range payload.Attachments {
			attachments = append(attachments, domain.Attachment{
				ID:          ap.ID,
				Name:        ap.Name,
				ContentType: ap.ContentType,
				Size:        ap.Size,
			})
		}
		core.SetAttachmentsFromServer(attachments)
	}
	if payload.Barcodes != nil {
		barcodes := make([]domain.Barcode, 0, len(payload.Barcodes))
		for _, bp := range payload.Barcodes {
			barcodes = append(barcodes, domain.Barcode{
				Data:        bp.Data,
				Format:      bp.Format,
				Description: bp.Description,
			})
		}
		core.SetBarcodesFromServer(barcodes)
	}
	return nil
}

func setContainerShape(c *domain.Container, cType domain.ContainerType, layout *api.GridLayoutPayload, bench bool) {
	var gl *domain.GridLayout
	if layout != nil {
		gl = &domain.GridLayout{
			RowsNumber:       layout.RowsNumber,
			ColumnsNumber:    layout.ColumnsNumber,
			RowsLabelType:    layout.RowsLabelType,
			ColumnsLabelType: layout.ColumnsLabelType,
		}
	}
	c.SetShapeFromServer(cType, gl, bench)
}
