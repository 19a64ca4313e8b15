package format

import (
	"bufio"
	"context"
	"os"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var ndjsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

type ndjsonReader struct {
	path string
}

func newNDJSONReader(path string, opts map[string]any) (Reader, []string, error) {
	var ignored []string
	for k := range opts {
		ignored = append(ignored, k)
	}
	return &ndjsonReader{path: path}, ignored, nil
}

func (r *ndjsonReader) firstObject() (map[string]any, bool, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var obj map[string]any
		if err := ndjsonAPI.UnmarshalFromString(line, &obj); err != nil {
			return nil, false, err
		}
		return obj, true, nil
	}
	return nil, false, sc.Err()
}

func (r *ndjsonReader) Probe(context.Context) (Probe, error) {
	obj, ok, err := r.firstObject()
	if err != nil || !ok {
		return Probe{}, err
	}
	return Probe{Columns: orderedKeys(obj)}, nil
}

func (r *ndjsonReader) Rows(context.Context) (RowIterator, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &ndjsonIterator{f: f, sc: sc}, nil
}

type ndjsonIterator struct {
	f     *os.File
	sc    *bufio.Scanner
	index int
}

func (it *ndjsonIterator) Next(context.Context) (Row, int, bool, error) {
	for it.sc.Scan() {
		line := strings.TrimSpace(it.sc.Text())
		if line == "" {
			continue
		}
		var obj map[string]any
		if err := ndjsonAPI.UnmarshalFromString(line, &obj); err != nil {
			return nil, 0, false, err
		}
		row, err := flattenRow(obj)
		if err != nil {
			return nil, 0, false, err
		}
		idx := it.index
		it.index++
		return row, idx, true, nil
	}
	return nil, 0, false, it.sc.Err()
}

func (it *ndjsonIterator) Close() error { return it.f.Close() }

// flattenRow renders a decoded JSON object's values as strings for the
// raw validation pass. A nested object or array fails with a cast_error
// (spec.md §4.3: "JSON ingestion accepts only flat objects").
func flattenRow(obj map[string]any) (Row, error) {
	row := make(Row, len(obj))
	for k, v := range obj {
		s, nested, err := stringifyScalar(v)
		if err != nil {
			return nil, err
		}
		if nested {
			row[k] = NestedMarker
			continue
		}
		row[k] = s
	}
	return row, nil
}

// NestedMarker flags a cell whose source value was a nested object/array;
// the validator turns this into a cast_error rather than trying to parse
// it as a scalar.
const NestedMarker = "\x00__floe_nested__\x00"

func stringifyScalar(v any) (string, bool, error) {
	switch t := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return t, false, nil
	case bool:
		if t {
			return "true", false, nil
		}
		return "false", false, nil
	case map[string]any, []any:
		return "", true, nil
	default:
		s, err := ndjsonAPI.MarshalToString(t)
		return s, false, err
	}
}

// orderedKeys lists obj's keys sorted lexicographically. A decoded JSON
// object carries no key order, so the result is deterministic for the same
// set of keys but does not follow the order of the bytes on disk.
func orderedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
