package endpoints

import (
	"context"

	"chizhikfront/internal/api/chizhik/responses"
)

func (c *Client) ActiveOffers(ctx context.Context) (responses.Offers, error) {
	var out responses.Offers
	if err := c.getJSON(ctx, "/offers/active", nil, 256*1024, &out); err != nil {
		return responses.Offers{}, err
	}
	return out, nil
}
