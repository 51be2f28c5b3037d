// Package metadata regroups scattered concept-level records into complete
// per-entity metadata records.
//
// Metadata queries return concept records of the shape
//
//	{id, variable: [{id, metatype: [{id, value}, ...]}, ...]}
//
// where fields belonging to one (concept, variable) pair arrive contiguously
// but spread across records. The assembler flattens the nesting into
// (concept, variable, field, value) quadruples and accumulates them into one
// open entity at a time, emitting it as soon as the key changes. Contiguity
// is a server-side ordering guarantee; the assembler does not re-sort.
package metadata

import (
	"fmt"
	"iter"

	"github.com/macrostat/worldbank-client/pkg/envelope"
)

// Entity is one complete metadata record, identified by the pair of concept
// name and entity id.
type Entity struct {
	Concept string
	ID      string
	Fields  map[string]string
}

// accumulator is the explicit assembly state machine: empty until the first
// quadruple, then holding exactly one open entity that is flushed whenever a
// quadruple with a different (concept, id) key arrives.
type accumulator struct {
	open *Entity
}

// observe folds one quadruple into the accumulator. When the key diverges
// from the open entity it returns that entity with done=true; the new key
// always becomes the open entity. Duplicate field ids within one entity
// overwrite (last write wins).
func (a *accumulator) observe(concept, id, field, value string) (Entity, bool) {
	var flushed Entity
	done := false

	if a.open == nil || a.open.Concept != concept || a.open.ID != id {
		if a.open != nil {
			flushed = *a.open
			done = true
		}
		a.open = &Entity{
			Concept: concept,
			ID:      id,
			Fields:  make(map[string]string),
		}
	}

	a.open.Fields[field] = value
	return flushed, done
}

// flush returns the open entity at end of stream, if any.
func (a *accumulator) flush() (Entity, bool) {
	if a.open == nil {
		return Entity{}, false
	}
	e := *a.open
	a.open = nil
	return e, true
}

// Assemble consumes a stream of concept records and yields complete metadata
// entities. concepts optionally restricts output to the named concepts; nil
// means all. Errors from the source stream end the sequence immediately.
func Assemble(src iter.Seq2[envelope.Record, error], concepts []string) iter.Seq2[Entity, error] {
	var wanted map[string]bool
	if concepts != nil {
		wanted = make(map[string]bool, len(concepts))
		for _, c := range concepts {
			wanted[c] = true
		}
	}

	return func(yield func(Entity, error) bool) {
		var acc accumulator

		for rec, err := range src {
			if err != nil {
				yield(Entity{}, err)
				return
			}

			concept := asString(rec["id"])
			if wanted != nil && !wanted[concept] {
				continue
			}

			variables, _ := rec["variable"].([]any)
			for _, v := range variables {
				vm, ok := v.(map[string]any)
				if !ok {
					continue
				}
				variableID := asString(vm["id"])

				fields, _ := vm["metatype"].([]any)
				for _, fv := range fields {
					fm, ok := fv.(map[string]any)
					if !ok {
						continue
					}
					flushed, done := acc.observe(concept, variableID, asString(fm["id"]), asString(fm["value"]))
					if done && !yield(flushed, nil) {
						return
					}
				}
			}
		}

		if final, ok := acc.flush(); ok {
			yield(final, nil)
		}
	}
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
