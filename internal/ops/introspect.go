package ops

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"
)

// Introspection responses are traversed with gjson rather than typed
// structs: the shape varies across remote versions and only a handful
// of fields matter.

// GraphQLIntrospection summarizes the remote schema: operation type
// names and the non-builtin type roster.
func (s *Service) GraphQLIntrospection(ctx context.Context) string {
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	data, err := s.client.SchemaSummary(ctx)
	if err != nil {
		return fail(err)
	}
	schema := gjson.GetBytes(data, "__schema")

	types := []map[string]any{}
	schema.Get("types").ForEach(func(_, t gjson.Result) bool {
		name := t.Get("name").String()
		if strings.HasPrefix(name, "__") {
			return true
		}
		entry := map[string]any{
			"name": name,
			"kind": t.Get("kind").String(),
		}
		if desc := t.Get("description").String(); desc != "" {
			entry["description"] = desc
		}
		types = append(types, entry)
		return true
	})

	queries := []string{}
	schema.Get("queryType.fields").ForEach(func(_, f gjson.Result) bool {
		queries = append(queries, f.Get("name").String())
		return true
	})
	mutations := []string{}
	schema.Get("mutationType.fields").ForEach(func(_, f gjson.Result) bool {
		mutations = append(mutations, f.Get("name").String())
		return true
	})

	return respond(map[string]any{
		"query_type":    schema.Get("queryType.name").String(),
		"mutation_type": schema.Get("mutationType.name").String(),
		"queries":       queries,
		"mutations":     mutations,
		"types":         types,
		"total_types":   len(types),
	})
}

// GetPageSchemaDetails describes the fields of one remote schema type.
// The type name defaults to "Page".
func (s *Service) GetPageSchemaDetails(ctx context.Context, typeName string) string {
	if typeName == "" {
		typeName = "Page"
	}
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	data, err := s.client.TypeDetail(ctx, typeName)
	if err != nil {
		return fail(err)
	}

	typ := gjson.GetBytes(data, "__type")
	if !typ.Exists() || typ.Type == gjson.Null {
		return failf("type %q not found in remote schema", typeName)
	}

	fields := []map[string]any{}
	typ.Get("fields").ForEach(func(_, f gjson.Result) bool {
		entry := map[string]any{
			"name": f.Get("name").String(),
			"type": f.Get("type.name").String(),
			"kind": f.Get("type.kind").String(),
		}
		if desc := f.Get("description").String(); desc != "" {
			entry["description"] = desc
		}
		fields = append(fields, entry)
		return true
	})

	return respond(map[string]any{
		"type":   typ.Get("name").String(),
		"kind":   typ.Get("kind").String(),
		"fields": fields,
		"total":  len(fields),
	})
}
