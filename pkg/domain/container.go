package domain

import "fmt"

// ContainerType discriminates how a container arranges its content.
type ContainerType string

// Supported container layouts.
const (
	ContainerList  ContainerType = "LIST"
	ContainerGrid  ContainerType = "GRID"
	ContainerImage ContainerType = "IMAGE"
)

// GridLayout describes the coordinate grid of a GRID container. Label types
// name the alphabet used for axis labels (e.g. "ABC" for letters, "N123" for
// numbers).
type GridLayout struct {
	RowsNumber       int
	ColumnsNumber    int
	RowsLabelType    string
	ColumnsLabelType string
}

// InBounds reports whether the 1-based coordinates fall inside the grid.
func (g GridLayout) InBounds(coordX, coordY int) bool {
	return coordX >= 1 && coordX <= g.ColumnsNumber && coordY >= 1 && coordY <= g.RowsNumber
}

// Container is a record that holds other records, either as a flat list, on
// an image, or arranged in a coordinate grid of locations. A bench is a
// container-variant root of a user's workspace.
type Container struct {
	RecordCore
	cType      ContainerType
	gridLayout *GridLayout
	locations  []*Location
	// locationsLoaded distinguishes "server has not sent locations yet"
	// from "container has no locations".
	locationsLoaded bool
	bench           bool
}

// NewListContainer constructs an unsaved LIST container.
func NewListContainer(name string) *Container {
	return &Container{RecordCore: NewRecordCore(name), cType: ContainerList}
}

// NewGridContainer constructs an unsaved GRID container with the given
// layout and one empty location per cell.
func NewGridContainer(name string, layout GridLayout) (*Container, error) {
	if layout.RowsNumber < 1 || layout.ColumnsNumber < 1 {
		return nil, &ValidationError{Field: "gridLayout", Reason: "grid dimensions must be positive"}
	}
	c := &Container{RecordCore: NewRecordCore(name), cType: ContainerGrid, gridLayout: &layout}
	for y := 1; y <= layout.RowsNumber; y++ {
		for x := 1; x <= layout.ColumnsNumber; x++ {
			c.locations = append(c.locations, &Location{owner: c, coordX: x, coordY: y})
		}
	}
	c.locationsLoaded = true
	return c, nil
}

// Type implements Record.
func (c *Container) Type() RecordType { return RecordTypeContainer }

// Core implements Record.
func (c *Container) Core() *RecordCore { return &c.RecordCore }

// ContainerType returns the container's layout variant.
func (c *Container) ContainerType() ContainerType { return c.cType }

// GridLayout returns the grid description for GRID containers, nil otherwise.
func (c *Container) GridLayout() *GridLayout { return c.gridLayout }

// IsBench reports whether this container is a user's bench.
func (c *Container) IsBench() bool { return c.bench }

// Locations returns the container's ordered locations. Callers check
// LocationsLoaded to distinguish an empty container from one whose
// locations have not been fetched.
func (c *Container) Locations() []*Location { return c.locations }

// LocationsLoaded reports whether the server has supplied locations.
func (c *Container) LocationsLoaded() bool { return c.locationsLoaded }

// LocationAt returns the location at the 1-based grid coordinates.
func (c *Container) LocationAt(coordX, coordY int) (*Location, bool) {
	for _, loc := range c.locations {
		if loc.coordX == coordX && loc.coordY == coordY {
			return loc, true
		}
	}
	return nil, false
}

// AddLocation appends a hydrated location, checking grid bounds for GRID
// containers.
func (c *Container) AddLocation(id *int64, coordX, coordY int) (*Location, error) {
	if c.cType == ContainerGrid && c.gridLayout != nil && !c.gridLayout.InBounds(coordX, coordY) {
		return nil, &ValidationError{
			Field:  "locations",
			Reason: fmt.Sprintf("coordinates (%d,%d) outside %dx%d grid", coordX, coordY, c.gridLayout.ColumnsNumber, c.gridLayout.RowsNumber),
		}
	}
	loc := &Location{owner: c, id: id, coordX: coordX, coordY: coordY}
	c.locations = append(c.locations, loc)
	c.locationsLoaded = true
	return loc, nil
}

// EnsureGridLocations backfills one empty location per grid cell when none
// exist yet. The layout defines the slots even before the server has sent
// location contents, so LocationsLoaded stays false until it does.
func (c *Container) EnsureGridLocations() {
	if c.cType != ContainerGrid || c.gridLayout == nil || len(c.locations) > 0 {
		return
	}
	for y := 1; y <= c.gridLayout.RowsNumber; y++ {
		for x := 1; x <= c.gridLayout.ColumnsNumber; x++ {
			c.locations = append(c.locations, &Location{owner: c, coordX: x, coordY: y})
		}
	}
}

// ClearLocations drops all locations ahead of payload hydration, releasing
// content back-references so re-added locations re-assert exclusivity.
func (c *Container) ClearLocations() {
	for _, loc := range c.locations {
		loc.ClearContent()
	}
	c.locations = nil
	c.locationsLoaded = false
}

// SetShapeFromServer installs the container variant, grid layout, and bench
// flag during payload hydration.
func (c *Container) SetShapeFromServer(cType ContainerType, layout *GridLayout, bench bool) {
	c.cType = cType
	c.gridLayout = layout
	c.bench = bench
}

// Location is one addressable slot within a container. Its content is
// exclusively owned: assigning a record here clears whichever location held
// it before, so a given global identifier appears in at most one location
// across the whole in-memory graph.
type Location struct {
	owner    *Container
	id       *int64
	coordX   int
	coordY   int
	content  Record
	selected bool
}

// ID returns the server-assigned location id, if known.
func (l *Location) ID() (int64, bool) {
	if l.id == nil {
		return 0, false
	}
	return *l.id, true
}

// Owner returns the container this location belongs to.
func (l *Location) Owner() *Container { return l.owner }

// CoordX returns the 1-based column coordinate.
func (l *Location) CoordX() int { return l.coordX }

// CoordY returns the 1-based row coordinate.
func (l *Location) CoordY() int { return l.coordY }

// Content returns the record slotted here, or nil.
func (l *Location) Content() Record { return l.content }

// Selected reports the move-time selection flag.
func (l *Location) Selected() bool { return l.selected }

// SetSelected sets the move-time selection flag.
func (l *Location) SetSelected(selected bool) { l.selected = selected }

// SetContent slots a record into this location. The record's previous
// location, if any, is cleared first; the two locations never reference the
// same content at once. Passing nil clears the slot.
func (l *Location) SetContent(r Record) {
	if l.content != nil {
		l.content.Core().parentLocation = nil
		l.content = nil
	}
	if r == nil {
		return
	}
	if prev := r.Core().parentLocation; prev != nil && prev != l {
		prev.content = nil
	}
	r.Core().parentLocation = l
	l.content = r
}

// ClearContent empties the slot and drops the content's back-reference.
func (l *Location) ClearContent() { l.SetContent(nil) }
