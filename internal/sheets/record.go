package sheets

import (
	"encoding/json"
	"maps"
)

// Record is one data row keyed by header column.
type Record map[string]string

// Query selects records whose cells equal every given value.
type Query map[string]string

// Matches reports whether every pair of q is present in r with an identical value.
// A column that is missing from the record never matches.
func (q Query) Matches(r Record) bool {
	for key, want := range q {
		got, ok := r[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// toRecords marshals data rows using the first row as header.
// Cells past the end of a short row read as empty strings.
func toRecords(rows [][]string) []Record {
	if len(rows) == 0 {
		return nil
	}
	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, toRecord(header, row))
	}
	return records
}

func toRecord(header, row []string) Record {
	rec := make(Record, len(header))
	for i, column := range header {
		if i < len(row) {
			rec[column] = row[i]
		} else {
			rec[column] = ""
		}
	}
	return rec
}

// toRow lays out rec along header. Columns missing from rec become empty strings,
// fields of rec that are not in header are dropped.
func toRow(header []string, rec Record) []string {
	row := make([]string, len(header))
	for i, column := range header {
		row[i] = rec[column]
	}
	return row
}

// cacheKey builds the lookup cache key for a query on table.
// encoding/json sorts map keys, so equal queries share a key regardless of construction order.
func cacheKey(table string, q Query) string {
	data, err := json.Marshal(q)
	if err != nil {
		// a map[string]string always marshals
		panic(err)
	}
	return table + "-" + string(data)
}
