// Package io provides basic tools to read queries and input documents
// from files and to write query results to an output stream.
package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/badwolf-labs/jsonql/plan"
)

// ReadQuerySource reads query source text from the provided reader. The
// data on the reader is interpreted as text; blank lines and lines whose
// first non-space characters are "--" are dropped, the rest are joined
// with newlines so multi-line statements survive intact.
func ReadQuerySource(r io.Reader) (string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)
	for scanner.Scan() {
		text := scanner.Text()
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		lines = append(lines, text)
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrap(err, "reading query source")
	}
	return strings.Join(lines, "\n"), nil
}

// ReadDocument reads one JSON document from the provided reader, returned
// raw for the executor to decode with its own number-preserving decoder.
// Trailing content after the first document is an error.
func ReadDocument(r io.Reader) (json.RawMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading input document")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	var probe interface{}
	if err := dec.Decode(&probe); err != nil {
		return nil, errors.Wrap(err, "parsing input document")
	}
	if dec.More() {
		return nil, errors.New("input contains more than one JSON document")
	}
	return json.RawMessage(data), nil
}

// WriteResult serializes a query result into the writer, one line per
// projected pair or per-element row. If a write fails the serialization
// stops. It returns the number of lines written regardless of whether it
// succeeded or failed partially.
func WriteResult(w io.Writer, r *plan.Result) (int, error) {
	cnt := 0
	line := func(format string, args ...interface{}) error {
		if _, err := fmt.Fprintf(w, format+"\n", args...); err != nil {
			return err
		}
		cnt++
		return nil
	}

	switch r.Kind {
	case plan.KindSimple:
		for _, pair := range r.Pairs {
			if err := line("(%q, %v)", pair.Alias, pair.Value); err != nil {
				return cnt, err
			}
		}
		if r.HasCond {
			if err := line("cond = %v", r.Cond); err != nil {
				return cnt, err
			}
		}
	case plan.KindNested:
		for i, row := range r.Rows {
			if row.Err != nil {
				if err := line("row %d: error: %v", i, row.Err); err != nil {
					return cnt, err
				}
				continue
			}
			for _, pair := range row.Result.Pairs {
				if err := line("row %d: (%q, %v)", i, pair.Alias, pair.Value); err != nil {
					return cnt, err
				}
			}
			if row.Result.HasCond {
				if err := line("row %d: when = %v", i, row.Result.Cond); err != nil {
					return cnt, err
				}
			}
		}
		if r.HasCond {
			if err := line("outer cond = %v", r.Cond); err != nil {
				return cnt, err
			}
		}
	}
	return cnt, nil
}
