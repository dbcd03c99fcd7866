// Package payload decodes raw forecast documents and walks their nested
// structure, reporting every missing or mistyped path as a schema error.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/okian/wxgrid/internal/domain/failure"
)

// Decode parses a JSON document into the generic map/slice form the walkers
// and the schema gate expect. Numbers are kept as json.Number.
func Decode(r io.Reader) (any, error) {
	const op = "payload.decode"
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, failure.Wrap(op, failure.ErrSchema, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, failure.Schemaf(op, "trailing data after document")
	}
	return doc, nil
}

// DecodeBytes is Decode over an in-memory body.
func DecodeBytes(b []byte) (any, error) {
	return Decode(bytes.NewReader(b))
}
