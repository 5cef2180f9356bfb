package endpoints

import (
	"context"
	"net/url"
	"strconv"

	"chizhikfront/internal/api/chizhik/responses"
)

func (c *Client) ProductInfo(ctx context.Context, productID int64, cityID string) (responses.Product, error) {
	q := url.Values{}
	q.Set("product_id", strconv.FormatInt(productID, 10))
	q.Set("city_id", cityID)

	var out responses.Product
	if err := c.getJSON(ctx, "/product/info", q, 1024*1024, &out); err != nil {
		return responses.Product{}, err
	}
	return out, nil
}
