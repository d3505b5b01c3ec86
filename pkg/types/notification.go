package types

// Notification tells dependent grids that a parent table changed.
// NewValue is set for updates only.
type Notification struct {
	SourceTable string
	Action      Action
	RowID       int64
	NewValue    *string
}
