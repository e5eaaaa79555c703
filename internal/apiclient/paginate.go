package apiclient

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mtgmine/mtgmine/internal/errs"
)

// Page is one response of a paginated list endpoint.
type Page struct {
	Data     []any
	HasMore  bool
	NextPage string
	Extra    map[string]any
}

// ParsePage interprets a decoded body as a pagination envelope. A top-level
// list is a single, final page.
func ParsePage(body any) (Page, error) {
	switch v := body.(type) {
	case []any:
		return Page{Data: v}, nil
	case map[string]any:
		rawData, ok := v["data"]
		if !ok {
			return Page{}, errs.Formatf("list response has no data field")
		}
		data, ok := rawData.([]any)
		if !ok {
			return Page{}, errs.Formatf("list response data is %T, not a list", rawData)
		}

		page := Page{Data: data, Extra: make(map[string]any, len(v))}
		for k, val := range v {
			switch k {
			case "data":
			case "has_more":
				page.HasMore, _ = val.(bool)
			case "next_page":
				page.NextPage, _ = val.(string)
			default:
				page.Extra[k] = val
			}
		}
		return page, nil
	default:
		return Page{}, errs.Formatf("expected a list response, got %T", body)
	}
}

// Paginate requests path with params, then follows next_page pointers while
// has_more is set, returning every page's data in arrival order. Any failed
// page aborts the whole call; nothing accumulated so far is returned.
func Paginate(ctx context.Context, c *Client, path string, params *Params) ([]any, error) {
	body, err := c.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	page, err := ParsePage(body)
	if err != nil {
		return nil, err
	}

	items := append([]any(nil), page.Data...)
	visited := map[string]struct{}{}
	pages := 1

	for page.HasMore {
		if page.NextPage == "" {
			return nil, errs.Formatf("page %d of %s has has_more set but no next_page", pages, path)
		}
		if _, seen := visited[page.NextPage]; seen {
			return nil, errs.Formatf("pagination loops back to %s", page.NextPage)
		}
		visited[page.NextPage] = struct{}{}

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled while paginating %s: %w", path, err)
		}

		body, err := c.GetURL(ctx, page.NextPage)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d of %s: %w", pages+1, path, err)
		}

		page, err = ParsePage(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %d of %s: %w", pages+1, path, err)
		}

		items = append(items, page.Data...)
		pages++
	}

	c.logger.Debug("pagination finished",
		zap.String("path", path),
		zap.Int("pages", pages),
		zap.Int("items", len(items)),
	)

	return items, nil
}
