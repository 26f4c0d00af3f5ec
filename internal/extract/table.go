package extract

import (
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// TableSection is the name of the section holding tabular data.
const TableSection = "csv_dict"

// IDColumn is the column holding the id of each row.
const IDColumn = "id"

// Row maps column names to values.
type Row = Section

// Table holds tabular data.
type Table struct {
	Headers []string
	Rows    *orderedmap.OrderedMap[string, *Row] // rows by id, in order
}

var (
	ErrNoHeader  = errors.New("table has no header row")
	ErrMissingID = errors.New("row has no id")
)

// NewTable creates a table from records, the first of which is the header.
//
// Cells with an empty header or empty value are dropped.
// The id column is removed from each row and used as its key; a later row with the same id replaces an earlier one.
func NewTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	table := &Table{
		Headers: records[0],
		Rows:    orderedmap.New[string, *Row](),
	}

	for index, record := range records[1:] {
		row := NewSection()
		for i, value := range record {
			if i >= len(table.Headers) {
				break
			}
			if key := table.Headers[i]; key != "" && value != "" {
				row.Set(key, value)
			}
		}

		id, ok := row.Delete(IDColumn)
		if !ok {
			return nil, fmt.Errorf("record %d: %w", index+1, ErrMissingID)
		}
		table.Rows.Set(fmt.Sprint(id), row)
	}

	return table, nil
}

// Data returns a document holding only this table.
func (table *Table) Data() *Data {
	headers := make([]any, len(table.Headers))
	for i, header := range table.Headers {
		headers[i] = header
	}

	rows := NewSection()
	for pair := table.Rows.Oldest(); pair != nil; pair = pair.Next() {
		rows.Set(pair.Key, pair.Value)
	}

	section := NewSection()
	section.Set("headers", headers)
	section.Set("rows", rows)

	data := NewData()
	data.SetSection(TableSection, section)
	return data
}

var errMalformedTable = errors.New("malformed tabular section")

// Table returns the tabular data held in this document, if any.
func (data *Data) Table() (table *Table, ok bool, err error) {
	section, ok := data.Section(TableSection)
	if !ok {
		return nil, false, nil
	}

	table = &Table{Rows: orderedmap.New[string, *Row]()}

	if raw, ok := section.Get("headers"); ok {
		headers, ok := raw.([]any)
		if !ok {
			return nil, true, fmt.Errorf("%w: headers must be a list", errMalformedTable)
		}
		for _, header := range headers {
			text, ok := header.(string)
			if !ok {
				return nil, true, fmt.Errorf("%w: header %v is not a string", errMalformedTable, header)
			}
			table.Headers = append(table.Headers, text)
		}
	}

	if raw, ok := section.Get("rows"); ok {
		rows, ok := raw.(*Section)
		if !ok {
			return nil, true, fmt.Errorf("%w: rows must be an object", errMalformedTable)
		}
		for pair := rows.Oldest(); pair != nil; pair = pair.Next() {
			row, ok := pair.Value.(*Row)
			if !ok {
				return nil, true, fmt.Errorf("%w: row %q must be an object", errMalformedTable, pair.Key)
			}
			table.Rows.Set(pair.Key, row)
		}
	}

	return table, true, nil
}
