package wikijs

import (
	"context"
	"encoding/json"
)

// SchemaSummary fetches the remote schema's query type, mutation type,
// and type roster. The response is returned raw; introspection output
// has no stable shape worth modeling.
func (c *Client) SchemaSummary(ctx context.Context) (json.RawMessage, error) {
	return c.QueryRaw(ctx, schemaSummaryQuery, nil)
}

// TypeDetail fetches the field layout of one named schema type.
func (c *Client) TypeDetail(ctx context.Context, name string) (json.RawMessage, error) {
	return c.QueryRaw(ctx, typeDetailQuery, map[string]any{"name": name})
}
