// Package api implements the HTTP transport for the inventory REST API: wire
// payload shapes, endpoint bindings, and error mapping. It knows nothing of
// the in-memory record graph; hydration is the factory's job.
package api

// RecordPayload is the server's JSON representation of one inventory record.
// Optional keys that are absent mean "not yet loaded", never "empty": the
// Locations pointer stays nil when the server omitted the key, and points to
// a (possibly empty) slice when it was present.
type RecordPayload struct {
	ID          *int64 `json:"id"`
	GlobalID    string `json:"globalId"`
	RecordType  string `json:"recordType"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Deleted     bool   `json:"deleted,omitempty"`

	// Container-only keys.
	CType      string             `json:"cType,omitempty"`
	GridLayout *GridLayoutPayload `json:"gridLayout,omitempty"`
	Locations  *[]LocationPayload `json:"locations,omitempty"`

	// Sample / sub-sample / template keys.
	TemplateID           *int64 `json:"templateId,omitempty"`
	SubSamplesCount      int    `json:"subSamplesCount,omitempty"`
	ParentSampleGlobalID string `json:"parentSampleGlobalId,omitempty"`
	Version              int    `json:"version,omitempty"`

	ExtraFields []ExtraFieldPayload `json:"extraFields,omitempty"`
	Attachments []AttachmentPayload `json:"attachments,omitempty"`
	Barcodes    []BarcodePayload    `json:"barcodes,omitempty"`
}

// GridLayoutPayload mirrors the grid description of a GRID container.
type GridLayoutPayload struct {
	RowsNumber       int    `json:"rowsNumber"`
	ColumnsNumber    int    `json:"columnsNumber"`
	RowsLabelType    string `json:"rowsLabelType,omitempty"`
	ColumnsLabelType string `json:"columnsLabelType,omitempty"`
}

// LocationPayload mirrors one grid slot, optionally holding content.
type LocationPayload struct {
	ID      *int64         `json:"id"`
	CoordX  int            `json:"coordX"`
	CoordY  int            `json:"coordY"`
	Content *RecordPayload `json:"content,omitempty"`
}

// ExtraFieldPayload mirrors one typed extra field.
type ExtraFieldPayload struct {
	ID      *int64 `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// AttachmentPayload mirrors one attachment reference.
type AttachmentPayload struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentMimeType,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// BarcodePayload mirrors one barcode entry.
type BarcodePayload struct {
	Data        string `json:"data"`
	Format      string `json:"format,omitempty"`
	Description string `json:"description,omitempty"`
}

// SearchResultPayload is the response envelope of GET /search and of the
// children listing.
type SearchResultPayload struct {
	TotalHits  int             `json:"totalHits"`
	PageNumber int             `json:"pageNumber"`
	Results    []RecordPayload `json:"results"`
}

// BulkMoveRequest is the body of POST /bulk with operationType MOVE.
type BulkMoveRequest struct {
	OperationType string             `json:"operationType"`
	Records       []string           `json:"records"`
	Destination   DestinationPayload `json:"destination"`
}

// DestinationPayload names the move target: a container root, or specific
// grid coordinates within it.
type DestinationPayload struct {
	ContainerGlobalID string            `json:"containerGlobalId"`
	Locations         []LocationRequest `json:"locations,omitempty"`
}

// LocationRequest addresses one grid slot in a move request.
type LocationRequest struct {
	CoordX int `json:"coordX"`
	CoordY int `json:"coordY"`
}

// BulkResultPayload is the response of POST /bulk: one entry per requested
// record, order-preserving with the request.
type BulkResultPayload struct {
	Status       string            `json:"status"`
	SuccessCount int               `json:"successCount"`
	ErrorCount   int               `json:"errorCount"`
	Results      []BulkItemPayload `json:"results"`
}

// BulkItemPayload is one per-record outcome: exactly one of Record or Error
// is set.
type BulkItemPayload struct {
	Record *RecordPayload    `json:"record,omitempty"`
	Error  *BulkErrorPayload `json:"error,omitempty"`
}

// BulkErrorPayload describes one failed record in a bulk response.
type BulkErrorPayload struct {
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
}

func (e *BulkErrorPayload) Error() string { return e.Message }

// BasketPayload mirrors one basket.
type BasketPayload struct {
	ID        *int64   `json:"id"`
	GlobalID  string   `json:"globalId,omitempty"`
	Name      string   `json:"name"`
	ItemCount int      `json:"itemCount"`
	ItemIDs   []string `json:"itemIds,omitempty"`
}

// CreateBasketRequest is the body of POST /baskets.
type CreateBasketRequest struct {
	Name    string   `json:"name"`
	ItemIDs []string `json:"itemIds,omitempty"`
}

// AddBasketItemsRequest is the body of POST /baskets/{id}/items.
type AddBasketItemsRequest struct {
	ItemIDs []string `json:"itemIds"`
}
