package index

// FieldSet is a bitmask recording which entry fields a token was found in.
type FieldSet uint8

const (
	FieldTitle FieldSet = 1 << iota
	FieldKeywords
	FieldContent
)

// Has reports whether field is set.
func (f FieldSet) Has(field FieldSet) bool {
	return f&field != 0
}

// Posting records one entry containing a token and the fields it appeared in.
type Posting struct {
	EntryID string
	Fields  FieldSet
}
