package quickbooks

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// CompanyInfo fetches the company profile. It is the cheapest authenticated call and
// serves as the credential probe.
func (c *Client) CompanyInfo(ctx context.Context) (*CompanyInfo, error) {
	var envelope struct {
		CompanyInfo *CompanyInfo `json:"CompanyInfo"`
	}
	if err := c.get(ctx, nil, &envelope, "companyinfo", c.companyID); err != nil {
		return nil, err
	}
	if envelope.CompanyInfo == nil {
		return nil, fmt.Errorf("response carries no CompanyInfo")
	}
	return envelope.CompanyInfo, nil
}

// Read fetches a single entity by id, e.g. Read(ctx, "Customer", "27").
// The entity object is returned as decoded JSON.
func (c *Client) Read(ctx context.Context, entity, id string) (any, error) {
	if entity == "" || id == "" {
		return nil, fmt.Errorf("entity and id cannot be empty")
	}

	var envelope map[string]any
	if err := c.get(ctx, nil, &envelope, strings.ToLower(entity), id); err != nil {
		return nil, err
	}

	value, ok := envelope[entity]
	if !ok {
		return nil, fmt.Errorf("response carries no %s", entity)
	}
	return value, nil
}

// Query runs a query statement and returns the QueryResponse object.
func (c *Client) Query(ctx context.Context, statement string) (map[string]any, error) {
	var envelope struct {
		QueryResponse map[string]any `json:"QueryResponse"`
	}
	if err := c.get(ctx, url.Values{"query": {statement}}, &envelope, "query"); err != nil {
		return nil, err
	}
	if envelope.QueryResponse == nil {
		return nil, fmt.Errorf("response carries no QueryResponse")
	}
	return envelope.QueryResponse, nil
}

// QueryAll selects every entity matching where (may be empty), paging with
// STARTPOSITION/MAXRESULTS until a short page arrives.
func (c *Client) QueryAll(ctx context.Context, entity, where string, pageSize int) ([]any, error) {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	all := []any{}
	for start := 1; ; start += pageSize {
		resp, err := c.Query(ctx, selectStatement(entity, where, start, pageSize))
		if err != nil {
			return nil, err
		}

		page, err := entityList(resp, entity)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		if len(page) < pageSize {
			return all, nil
		}
	}
}

func selectStatement(entity, where string, start, pageSize int) string {
	var sb strings.Builder
	sb.WriteString("select * from ")
	sb.WriteString(entity)
	if where = strings.TrimSpace(where); where != "" {
		sb.WriteString(" where ")
		sb.WriteString(where)
	}
	fmt.Fprintf(&sb, " STARTPOSITION %d MAXRESULTS %d", start, pageSize)
	return sb.String()
}

// entityList extracts QueryResponse.<entity>. The key is absent when nothing matched.
func entityList(resp map[string]any, entity string) ([]any, error) {
	raw, ok := resp[entity]
	if !ok {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("QueryResponse.%s is %T, expected an array", entity, raw)
	}
	return list, nil
}
