package format

import (
	"context"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
)

type jsonArrayReader struct {
	path string
}

func newJSONArrayReader(path string, opts map[string]any) (Reader, []string, error) {
	var ignored []string
	for k := range opts {
		ignored = append(ignored, k)
	}
	return &jsonArrayReader{path: path}, ignored, nil
}

func (r *jsonArrayReader) openArray() (*os.File, *jsoniter.Decoder, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, nil, err
	}
	dec := jsoniter.NewDecoder(f)
	tok, err := dec.Token()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if delim, ok := tok.(jsoniter.Delim); !ok || delim != '[' {
		f.Close()
		return nil, nil, &FormatError{Reason: "json source is not a top-level array"}
	}
	return f, dec, nil
}

func (r *jsonArrayReader) Probe(context.Context) (Probe, error) {
	f, dec, err := r.openArray()
	if err != nil {
		return Probe{}, err
	}
	defer f.Close()

	if !dec.More() {
		return Probe{}, nil
	}
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return Probe{}, err
	}
	return Probe{Columns: orderedKeys(obj)}, nil
}

func (r *jsonArrayReader) Rows(context.Context) (RowIterator, error) {
	f, dec, err := r.openArray()
	if err != nil {
		return nil, err
	}
	return &jsonArrayIterator{f: f, dec: dec}, nil
}

type jsonArrayIterator struct {
	f     *os.File
	dec   *jsoniter.Decoder
	index int
}

func (it *jsonArrayIterator) Next(context.Context) (Row, int, bool, error) {
	if !it.dec.More() {
		return nil, 0, false, nil
	}
	var obj map[string]any
	if err := it.dec.Decode(&obj); err != nil {
		if err == io.EOF {
			return nil, 0, false, nil
		}
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

func (it *jsonArrayIterator) Close() error { return it.f.Close() }

// FormatError reports a structural problem with an input file that isn't
// a per-row validation rule violation (spec.md §7: "Storage/Format errors
// are scoped to the file").
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "format: " + e.Reason }
