package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dpplink/dpplink/internal/domain"
)

// Worksheet names are capped by the xlsx format
const maxSheetNameLength = 31

// FlattenService converts JSON API payloads into tabular sheets by
// discovering arrays of objects and flattening nested keys into columns
type FlattenService struct {
	sep string
}

// NewFlattenService creates a new flatten service. sep joins nested key
// segments into column names (default ".").
func NewFlattenService(sep string) *FlattenService {
	if sep == "" {
		sep = "."
	}
	return &FlattenService{sep: sep}
}

// PayloadArray is an array of objects found in a JSON document, identified
// by its dot path from the root ("$", "$.data.items", ...)
type PayloadArray struct {
	Path    string
	Records []*jsonObject
}

// SingleSheet flattens one array of the payload into a sheet. An explicit
// dot path wins when it resolves to an array of objects; otherwise the first
// discovered array is used; a document without any becomes a one-row sheet
// named "payload". columns optionally projects the result.
func (s *FlattenService) SingleSheet(payload []byte, path string, columns []string) (domain.Sheet, error) {
	doc, err := decodeOrdered(payload)
	if err != nil {
		return domain.Sheet{}, fmt.Errorf("failed to parse payload: %w", err)
	}

	var records []*jsonObject
	name := ""

	if path != "" {
		if target, ok := arrayOfObjects(getByPath(doc, path)); ok {
			records = target
			name = sheetNameFromPath(path)
		}
	}

	if records == nil {
		if arrays := findArrays(doc, "$"); len(arrays) > 0 {
			records = arrays[0].Records
			name = sheetNameFromPath(arrays[0].Path)
		}
	}

	if records == nil {
		obj, ok := doc.(*jsonObject)
		if !ok {
			return domain.Sheet{}, fmt.Errorf("payload contains no object or array of objects")
		}
		records = []*jsonObject{obj}
		name = "payload"
	}

	header, rows := s.flattenRecords(records)
	header, rows = projectColumns(header, rows, columns)

	return domain.Sheet{Name: clipSheetName(name), Header: header, Rows: rows}, nil
}

// MultiSheet flattens every discovered array of objects into its own sheet,
// named from its dot path. A document without any becomes a single one-row
// sheet named "payload".
func (s *FlattenService) MultiSheet(payload []byte, columns []string) ([]domain.Sheet, error) {
	doc, err := decodeOrdered(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}

	arrays := findArrays(doc, "$")
	if len(arrays) == 0 {
		sheet, err := s.SingleSheet(payload, "", columns)
		if err != nil {
			return nil, err
		}
		return []domain.Sheet{sheet}, nil
	}

	sheets := make([]domain.Sheet, 0, len(arrays))
	for _, arr := range arrays {
		header, rows := s.flattenRecords(arr.Records)
		header, rows = projectColumns(header, rows, columns)

		sheets = append(sheets, domain.Sheet{
			Name:   clipSheetName(sheetNameFromPath(arr.Path)),
			Header: header,
			Rows:   rows,
		})
	}

	return sheets, nil
}

// flattenRecords flattens nested objects into columns joined by the
// configured separator. Column order is first-appearance order across all
// records; cells missing from a record stay nil.
func (s *FlattenService) flattenRecords(records []*jsonObject) ([]string, [][]interface{}) {
	header := []string{}
	position := map[string]int{}
	flat := make([]map[string]interface{}, 0, len(records))

	for _, record := range records {
		row := map[string]interface{}{}
		s.flattenInto(record, "", row, &header, position)
		flat = append(flat, row)
	}

	rows := make([][]interface{}, 0, len(flat))
	for _, row := range flat {
		cells := make([]interface{}, len(header))
		for column, v := range row {
			cells[position[column]] = v
		}
		rows = append(rows, cells)
	}

	return header, rows
}

func (s *FlattenService) flattenInto(obj *jsonObject, prefix string, row map[string]interface{}, header *[]string, position map[string]int) {
	for _, key := range obj.keys {
		column := key
		if prefix != "" {
			column = prefix + s.sep + key
		}

		value := obj.values[key]
		if child, ok := value.(*jsonObject); ok {
			s.flattenInto(child, column, row, header, position)
			continue
		}

		if _, ok := position[column]; !ok {
			position[column] = len(*header)
			*header = append(*header, column)
		}

		row[column] = cellValue(value)
	}
}

// cellValue keeps scalars as-is; arrays and anything else non-scalar are
// serialized to compact JSON so they survive the trip into a cell
func cellValue(v interface{}) interface{} {
	switch v.(type) {
	case nil, string, bool, int64, float64:
		return v
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(encoded)
}

// findArrays walks the document and collects every array whose elements are
// all objects. Arrays are not descended into; only objects are.
func findArrays(doc interface{}, basePath string) []PayloadArray {
	results := []PayloadArray{}

	switch v := doc.(type) {
	case []interface{}:
		if records, ok := arrayOfObjects(v); ok {
			results = append(results, PayloadArray{Path: basePath, Records: records})
		}
	case *jsonObject:
		for _, key := range v.keys {
			results = append(results, findArrays(v.values[key], basePath+"."+key)...)
		}
	}

	return results
}

// arrayOfObjects reports whether v is a non-empty array containing only objects
func arrayOfObjects(v interface{}) ([]*jsonObject, bool) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) == 0 {
		return nil, false
	}

	records := make([]*jsonObject, 0, len(arr))
	for _, item := range arr {
		obj, ok := item.(*jsonObject)
		if !ok {
			return nil, false
		}
		records = append(records, obj)
	}

	return records, true
}

// getByPath resolves a simple dot path (with optional leading "$.") from the
// document root. Returns nil when any segment is missing.
func getByPath(doc interface{}, path string) interface{} {
	if path == "" || path == "$" {
		return doc
	}

	current := doc
	for _, part := range strings.Split(strings.ReplaceAll(path, "$.", ""), ".") {
		if part == "" {
			continue
		}

		obj, ok := current.(*jsonObject)
		if !ok {
			return nil
		}

		current, ok = obj.values[part]
		if !ok {
			return nil
		}
	}

	return current
}

// sheetNameFromPath derives a worksheet name from a dot path
func sheetNameFromPath(path string) string {
	name := strings.ReplaceAll(path, "$.", "")
	name = strings.ReplaceAll(name, "$", "root")
	if name == "" {
		return "data"
	}
	return name
}

// clipSheetName enforces the xlsx sheet name limit, keeping the tail since
// the deepest path segments are the distinctive ones
func clipSheetName(name string) string {
	if len(name) > maxSheetNameLength {
		return name[len(name)-maxSheetNameLength:]
	}
	if name == "" {
		return "data"
	}
	return name
}

// projectColumns restricts the table to the requested columns, in the
// requested order. Unknown names are ignored; when none of the requested
// columns exist the table is returned unchanged.
func projectColumns(header []string, rows [][]interface{}, columns []string) ([]string, [][]interface{}) {
	if len(columns) == 0 {
		return header, rows
	}

	position := map[string]int{}
	for i, column := range header {
		position[column] = i
	}

	keep := []int{}
	projected := []string{}
	for _, column := range columns {
		column = strings.TrimSpace(column)
		if ix, ok := position[column]; ok {
			keep = append(keep, ix)
			projected = append(projected, column)
		}
	}

	if len(keep) == 0 {
		return header, rows
	}

	projectedRows := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, len(keep))
		for i, ix := range keep {
			cells[i] = row[ix]
		}
		projectedRows = append(projectedRows, cells)
	}

	return projected, projectedRows
}

// jsonObject is a JSON object that remembers its key order, so flattened
// column order matches the source document instead of map iteration order
type jsonObject struct {
	keys   []string
	values map[string]interface{}
}

func (o *jsonObject) set(key string, value interface{}) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// MarshalJSON round-trips the object with its original key order
func (o *jsonObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeOrdered parses JSON keeping object key order and integer fidelity
func decodeOrdered(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	doc, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &jsonObject{values: map[string]interface{}{}}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key token %v", keyTok)
				}
				value, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.set(key, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil

		case '[':
			arr := []interface{}{}
			for dec.More() {
				value, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)

	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil

	default:
		return tok, nil
	}
}
