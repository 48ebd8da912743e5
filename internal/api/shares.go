package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gigurra/billview/internal"
)

// ShareRequest shares a bill with a username or email. An empty SplitType
// shares without a split.
type ShareRequest struct {
	SharedWith string             `json:"shared_with"`
	SplitType  internal.SplitType `json:"split_type,omitempty"`
	SplitValue *float64           `json:"split_value,omitempty"`
}

// ShareBill validates the split locally, then creates the share.
func (c *Client) ShareBill(ctx context.Context, billID int, req ShareRequest) (internal.BillShare, error) {
	req.SharedWith = strings.ToLower(strings.TrimSpace(req.SharedWith))
	if req.SharedWith == "" {
		return internal.BillShare{}, fmt.Errorf("sharing bill %d: shared_with is required", billID)
	}
	if req.SplitType != internal.SplitNone {
		if err := internal.ValidateSplit(req.SplitType, req.SplitValue); err != nil {
			return internal.BillShare{}, fmt.Errorf("sharing bill %d: %w", billID, err)
		}
	}

	// the create endpoint names the recipient shared_with_identifier
	var created struct {
		internal.BillShare
		SharedWithIdentifier string `json:"shared_with_identifier"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/bills/%d/share", billID), nil, req, &created); err != nil {
		return internal.BillShare{}, fmt.Errorf("sharing bill %d: %w", billID, err)
	}
	share := created.BillShare
	if share.SharedWith == "" {
		share.SharedWith = created.SharedWithIdentifier
	}
	return share, nil
}

// ListShares is the owner's view of who a bill is shared with.
func (c *Client) ListShares(ctx context.Context, billID int) ([]internal.BillShare, error) {
	var shares []internal.BillShare
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/bills/%d/shares", billID), nil, nil, &shares); err != nil {
		return nil, fmt.Errorf("listing shares for bill %d: %w", billID, err)
	}
	return shares, nil
}
