package endpoints

import (
	"context"
	"net/url"
	"strconv"

	"chizhikfront/internal/api/chizhik/responses"
)

func (c *Client) Products(ctx context.Context, cityID string, categoryID int64, page int, search string) (responses.ProductPage, error) {
	if page <= 0 {
		page = 1
	}
	q := url.Values{}
	q.Set("city_id", cityID)
	q.Set("category_id", strconv.FormatInt(categoryID, 10))
	q.Set("page", strconv.Itoa(page))
	if search != "" {
		q.Set("search", search)
	}

	var out responses.ProductPage
	if err := c.getJSON(ctx, "/catalog/products", q, 4*1024*1024, &out); err != nil {
		return responses.ProductPage{}, err
	}
	return out, nil
}
