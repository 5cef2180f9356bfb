package endpoints

import (
	"context"
	"net/url"

	"chizhikfront/internal/api/chizhik/responses"
)

// CategoryTree fetches the full taxonomy for a city. The backend answers
// 202/503 while it builds the tree in the background; the transport polls
// through those.
func (c *Client) CategoryTree(ctx context.Context, cityID string) ([]responses.Category, error) {
	q := url.Values{}
	q.Set("city_id", cityID)

	var out []responses.Category
	if err := c.getJSON(ctx, "/catalog/tree", q, 4*1024*1024, &out); err != nil {
		return nil, err
	}
	return out, nil
}
