package endpoints

import (
	"context"
	"net/url"
	"strconv"

	"chizhikfront/internal/api/chizhik/responses"
)

type citiesResp struct {
	Items []responses.City `json:"items"`
}

func (c *Client) SearchCities(ctx context.Context, search string, page int) ([]responses.City, error) {
	if page <= 0 {
		page = 1
	}
	q := url.Values{}
	q.Set("search", search)
	q.Set("page", strconv.Itoa(page))

	var out citiesResp
	if err := c.getJSON(ctx, "/geo/cities", q, 512*1024, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
