package eve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	cerr "github.com/evelabs/evectl/errors"
)

// AddNetwork creates a network object in a lab and returns its id. The
// request must mimic the legacy UI: urlencoded content type, raw JSON body
// with string-typed numerics, XMLHttpRequest marker. Sending proper
// application/json makes CE builds reject the request.
func (c *Client) AddNetwork(ctx context.Context, lab, folder string, spec NetworkSpec) (string, error) {
	if spec.Type == "" {
		spec.Type = "bridge"
	}
	if spec.Icon == "" {
		spec.Icon = "01-Cloud-Default.svg"
	}
	if spec.Left == 0 {
		spec.Left = 600
	}
	if spec.Top == 0 {
		spec.Top = 350
	}

	payload := map[string]interface{}{
		"count":      "1",
		"visibility": strconv.Itoa(spec.Visibility),
		"name":       spec.Name,
		"type":       spec.Type,
		"icon":       spec.Icon,
		"left":       strconv.Itoa(spec.Left),
		"top":        strconv.Itoa(spec.Top),
		"postfix":    0,
	}

	env, err := c.doUI(ctx, http.MethodPost, c.labPath(lab, folder)+"/networks", payload, true)
	if err != nil {
		return "", fmt.Errorf("add network %q: %w", spec.Name, err)
	}
	if env.Status != "success" {
		return "", fmt.Errorf("add network %q: %s", spec.Name, env.Message)
	}

	var data struct {
		ID json.Number `json:"id"`
	}
	if len(env.Data) > 0 {
		_ = json.Unmarshal(env.Data, &data)
	}
	if data.ID.String() != "" {
		return data.ID.String(), nil
	}
	// some builds omit the id in the create response
	return c.NetworkIDByName(ctx, lab, folder, spec.Name)
}

// ListNetworks returns the lab's networks keyed by id.
func (c *Client) ListNetworks(ctx context.Context, lab, folder string) (map[string]Network, error) {
	env, err := c.do(ctx, http.MethodGet, c.labPath(lab, folder)+"/networks", nil, uiHeaders(true))
	if err != nil {
		return nil, fmt.Errorf("list networks: %w", err)
	}

	nets := map[string]Network{}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &nets); err != nil {
			return nil, fmt.Errorf("list networks: decoding: %w", err)
		}
	}
	return nets, nil
}

// NetworkIDByName resolves a network name to its id.
func (c *Client) NetworkIDByName(ctx context.Context, lab, folder, name string) (string, error) {
	nets, err := c.ListNetworks(ctx, lab, folder)
	if err != nil {
		return "", err
	}
	for _, n := range nets {
		if n.Name == name {
			return n.ID.String(), nil
		}
	}
	return "", fmt.Errorf("%w: network %q in lab %q", cerr.ErrNetworkNotFound, name, lab)
}
