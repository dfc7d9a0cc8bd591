package domain

import "time"

// FieldKind is the closed set of field kinds the record store accepts.
type FieldKind string

const (
	FieldTitle FieldKind = "title"
	FieldText  FieldKind = "text"
	FieldLink  FieldKind = "link"
	FieldDate  FieldKind = "date"
)

// RecordField is one named, kind-tagged value of a record. Text carries the
// value for title/text/link fields, Date for date fields.
type RecordField struct {
	Name string
	Kind FieldKind
	Text string
	Date time.Time
}

// Record is an ordered list of fields destined for one row of a named
// collection. The store treats it as opaque key-value data.
type Record struct {
	Fields []RecordField
}

func TitleField(name, value string) RecordField {
	return RecordField{Name: name, Kind: FieldTitle, Text: value}
}

func TextField(name, value string) RecordField {
	return RecordField{Name: name, Kind: FieldText, Text: value}
}

func LinkField(name, value string) RecordField {
	return RecordField{Name: name, Kind: FieldLink, Text: value}
}

func DateField(name string, value time.Time) RecordField {
	return RecordField{Name: name, Kind: FieldDate, Date: value}
}

// StringValue renders the field value for storage. Dates use the civil date
// form the processed-notes collection expects.
func (f RecordField) StringValue() string {
	if f.Kind == FieldDate {
		return f.Date.Format("2006-01-02")
	}
	return f.Text
}
