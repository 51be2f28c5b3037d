// Package envelope decodes the response envelope families returned by the
// World Bank API and extracts page headers and payload records from them.
//
// The API does not version its envelope format explicitly, so the two known
// families are told apart purely by structure:
//
//   - List envelope: a JSON array whose first element is the page header
//     object and whose second element is the array of payload records
//     (the classic v2 data API).
//   - Object envelope: a JSON object carrying the header fields directly,
//     with the payload nested under "source" (metadata, concept lists, and
//     the beta-style endpoints).
//
// Decode attempts both parses and returns a tagged variant; anything that
// matches neither family fails with ErrShape.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Common errors returned by the resolver.
var (
	// ErrDecode is returned when the response body is not valid JSON.
	ErrDecode = errors.New("response body is not valid JSON")

	// ErrShape is returned when the decoded document matches no known
	// envelope family.
	ErrShape = errors.New("unrecognized response envelope")
)

// Record is one API entity as an opaque key-value mapping. The resolver
// assumes no schema beyond the keys each extraction branch inspects.
type Record = map[string]any

// Header holds the per-request paging metadata reported by the API.
type Header struct {
	Total   int
	Page    int
	PerPage int
}

// Message is a server-reported error embedded in an otherwise successful
// response header.
type Message struct {
	Key   string
	Value string
}

// Envelope is the tagged variant produced by Decode: either a ListEnvelope
// or an ObjectEnvelope.
type Envelope interface {
	// Header extracts the paging header fields. Missing fields read as zero.
	Header() Header

	// Message reports a server-supplied error message, if the header
	// carries one.
	Message() (Message, bool)

	// Records extracts the payload records. For concept/metadata queries
	// pass wantConcepts=true to receive concept-level records instead of
	// the first concept's variable list.
	Records(wantConcepts bool) ([]Record, error)
}

// ListEnvelope is the array-of-two-elements family: [header, records].
type ListEnvelope struct {
	header Record
	rows   []any
}

// ObjectEnvelope is the top-level-object family with a nested "source" key.
type ObjectEnvelope struct {
	doc Record
}

// Decode parses a raw response body into one of the known envelope families.
// It returns an error wrapping ErrDecode for malformed JSON and ErrShape for
// valid JSON that matches neither family.
func Decode(data []byte) (Envelope, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	switch v := doc.(type) {
	case []any:
		if len(v) == 0 {
			return nil, ErrShape
		}
		header, ok := v[0].(map[string]any)
		if !ok {
			return nil, ErrShape
		}
		var rows []any
		if len(v) > 1 {
			rows, _ = v[1].([]any)
		}
		return &ListEnvelope{header: header, rows: rows}, nil

	case map[string]any:
		return &ObjectEnvelope{doc: v}, nil
	}

	return nil, ErrShape
}

// Header implements Envelope.
func (e *ListEnvelope) Header() Header {
	return headerFrom(e.header)
}

// Message implements Envelope.
func (e *ListEnvelope) Message() (Message, bool) {
	return messageFrom(e.header)
}

// Records implements Envelope. The wantConcepts flag has no effect for the
// list family, which never nests concepts.
func (e *ListEnvelope) Records(wantConcepts bool) ([]Record, error) {
	return toRecords(e.rows)
}

// Header implements Envelope. The object family carries the header fields at
// the top level of the document.
func (e *ObjectEnvelope) Header() Header {
	return headerFrom(e.doc)
}

// Message implements Envelope.
func (e *ObjectEnvelope) Message() (Message, bool) {
	return messageFrom(e.doc)
}

// Records implements Envelope. The payload lives under "source": a list of
// concept mappings yields either the concepts themselves (wantConcepts) or
// the variable list of the first concept; a single mapping yields its nested
// "data" list (beta-style endpoints).
func (e *ObjectEnvelope) Records(wantConcepts bool) ([]Record, error) {
	switch src := e.doc["source"].(type) {
	case []any:
		if len(src) == 0 {
			return nil, ErrShape
		}
		first, ok := src[0].(map[string]any)
		if !ok {
			return nil, ErrShape
		}
		concepts, ok := first["concept"].([]any)
		if !ok {
			return nil, ErrShape
		}
		if wantConcepts {
			return toRecords(concepts)
		}
		if len(concepts) == 0 {
			return nil, ErrShape
		}
		firstConcept, ok := concepts[0].(map[string]any)
		if !ok {
			return nil, ErrShape
		}
		variables, ok := firstConcept["variable"].([]any)
		if !ok {
			return nil, ErrShape
		}
		return toRecords(variables)

	case map[string]any:
		data, ok := src["data"].([]any)
		if !ok {
			return nil, ErrShape
		}
		return toRecords(data)
	}

	return nil, ErrShape
}

func headerFrom(doc Record) Header {
	return Header{
		Total:   asInt(doc["total"]),
		Page:    asInt(doc["page"]),
		PerPage: asInt(doc["per_page"]),
	}
}

func messageFrom(doc Record) (Message, bool) {
	msgs, ok := doc["message"].([]any)
	if !ok || len(msgs) == 0 {
		return Message{}, false
	}
	first, ok := msgs[0].(map[string]any)
	if !ok {
		return Message{}, false
	}
	return Message{
		Key:   asString(first["key"]),
		Value: asString(first["value"]),
	}, true
}

func toRecords(rows []any) ([]Record, error) {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, ok := row.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: payload element is not an object", ErrShape)
		}
		records = append(records, rec)
	}
	return records, nil
}

// asInt tolerates the API's habit of reporting numeric header fields as
// either JSON numbers or strings.
func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0
		}
		return i
	case int:
		return n
	}
	return 0
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
