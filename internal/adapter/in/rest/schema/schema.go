// Package schema validates JSON payloads against flat object schemas and
// reports the first violation in the wording clients of the posts API
// already parse, e.g. "'body' is a required property".
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

var ErrMalformedJSON = errors.New("malformed json")

// Field is a property of an object schema with a JSON type name.
type Field struct {
	Name string
	Type string
}

// Object describes a JSON object. Fields keep their declared order, which is
// also the order violations are looked for in.
type Object struct {
	Fields   []Field
	Required []string
}

// Document renders the object as a JSON Schema document.
func (o Object) Document() map[string]any {
	props := make(map[string]any, len(o.Fields))
	for _, f := range o.Fields {
		props[f.Name] = map[string]any{"type": f.Type}
	}
	doc := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(o.Required) > 0 {
		doc["required"] = o.Required
	}
	return doc
}

// ValidationError is returned when a payload is JSON but does not satisfy
// the schema.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type Validator struct {
	object   Object
	compiled *jsonschema.Schema
}

func New(o Object) (*Validator, error) {
	raw, err := json.Marshal(o.Document())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	compiled, err := jsonschema.NewCompiler().Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Validator{object: o, compiled: compiled}, nil
}

func MustNew(o Object) *Validator {
	v, err := New(o)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate returns nil for a conforming payload, an error wrapping
// ErrMalformedJSON when data is not JSON, and a *ValidationError otherwise.
func (v *Validator) Validate(data []byte) error {
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	result := v.compiled.Validate(instance)
	if result.Valid {
		return nil
	}

	// Numbers are kept as literals for rendering; kaptinlin types
	// json.Number as a string, so it validates the float64 tree above.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var literal any
	if err := dec.Decode(&literal); err != nil {
		literal = instance
	}

	return &ValidationError{Message: v.message(result, literal)}
}

type violation struct {
	location string
	depth    int
	rank     int
	err      *jsonschema.EvaluationError
}

// message renders the violation closest to the document root. At equal
// depth required beats type, and type errors follow the declared field order.
func (v *Validator) message(result *jsonschema.EvaluationResult, instance any) string {
	var found []violation
	collectViolations(result, "", &found)

	var best *violation
	for i := range found {
		cur := &found[i]
		cur.rank = v.rank(cur)
		if best == nil || less(cur, best) {
			best = cur
		}
	}
	if best == nil {
		return "payload does not match schema"
	}

	switch best.err.Keyword {
	case "required":
		return fmt.Sprintf("%s is a required property", repr(firstMissing(best.err.Params)))
	case "type":
		value, _ := lookup(instance, best.location)
		return fmt.Sprintf("%s is not of type %s", repr(value), expectedTypes(best.err.Params))
	default:
		return best.err.Error()
	}
}

func collectViolations(r *jsonschema.EvaluationResult, base string, out *[]violation) {
	if r == nil {
		return
	}
	loc := base + r.InstanceLocation
	for _, e := range r.Errors {
		if e.Keyword != "required" && e.Keyword != "type" {
			continue
		}
		*out = append(*out, violation{
			location: loc,
			depth:    strings.Count(loc, "/"),
			err:      e,
		})
	}
	for _, d := range r.Details {
		collectViolations(d, loc, out)
	}
}

func (v *Validator) rank(x *violation) int {
	if x.err.Keyword == "required" {
		return -1
	}
	name := x.location[strings.LastIndexByte(x.location, '/')+1:]
	for i, f := range v.object.Fields {
		if f.Name == unescapePointer(name) {
			return i
		}
	}
	return len(v.object.Fields)
}

func less(a, b *violation) bool {
	if a.depth != b.depth {
		return a.depth < b.depth
	}
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	return a.location < b.location
}

// firstMissing reads the first name out of a required error. kaptinlin
// quotes the names and lists them in the schema's declared order.
func firstMissing(params map[string]any) string {
	raw, _ := params["property"].(string)
	if raw == "" {
		list, _ := params["properties"].(string)
		raw, _, _ = strings.Cut(list, ", ")
	}
	return strings.Trim(raw, "'")
}

func expectedTypes(params map[string]any) string {
	expected, _ := params["expected"].(string)
	names := strings.Split(expected, ", ")
	for i, n := range names {
		names[i] = repr(n)
	}
	return strings.Join(names, ", ")
}

func lookup(instance any, pointer string) (any, bool) {
	if pointer == "" {
		return instance, true
	}
	cur := instance
	for _, tok := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		tok = unescapePointer(tok)
		switch node := cur.(type) {
		case map[string]any:
			val, ok := node[tok]
			if !ok {
				return nil, false
			}
			cur = val
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

func unescapePointer(tok string) string {
	return strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
}
