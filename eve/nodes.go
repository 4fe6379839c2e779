package eve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	cerr "github.com/evelabs/evectl/errors"
)

// DefaultedNodeSpec fills the qemu/vIOS defaults the UI would use.
func DefaultedNodeSpec(spec NodeSpec) NodeSpec {
	if spec.Type == "" {
		spec.Type = "qemu"
	}
	if spec.Template == "" {
		spec.Template = "vios"
	}
	if spec.Icon == "" {
		spec.Icon = "Router.png"
	}
	if spec.Left == "" {
		spec.Left = "30%"
	}
	if spec.Top == "" {
		spec.Top = "30%"
	}
	if spec.RAM == "" {
		spec.RAM = "1024"
	}
	if spec.CPU == 0 {
		spec.CPU = 1
	}
	if spec.Ethernet == 0 {
		spec.Ethernet = 4
	}
	if spec.Console == "" {
		spec.Console = "telnet"
	}
	if spec.Config == "" {
		spec.Config = "Unconfigured"
	}
	return spec
}

// AddNode creates a node in a lab.
func (c *Client) AddNode(ctx context.Context, lab, folder string, spec NodeSpec) error {
	spec = DefaultedNodeSpec(spec)

	payload := map[string]interface{}{
		"type":     spec.Type,
		"template": spec.Template,
		"config":   spec.Config,
		"delay":    spec.Delay,
		"icon":     spec.Icon,
		"name":     spec.Name,
		"left":     spec.Left,
		"top":      spec.Top,
		"ram":      spec.RAM,
		"console":  spec.Console,
		"cpu":      spec.CPU,
		"ethernet": spec.Ethernet,
	}
	if spec.Image != "" {
		payload["image"] = spec.Image
	}

	env, err := c.doJSON(ctx, http.MethodPost, c.labPath(lab, folder)+"/nodes", payload)
	if err != nil {
		return fmt.Errorf("add node %q: %w", spec.Name, err)
	}
	if env.Status != "success" {
		return fmt.Errorf("add node %q: %s", spec.Name, env.Message)
	}
	log.Infof("created node %q (%s) in lab %q", spec.Name, spec.Template, lab)
	return nil
}

// ListNodes returns the lab's nodes keyed by id.
func (c *Client) ListNodes(ctx context.Context, lab, folder string) (map[string]Node, error) {
	env, err := c.do(ctx, http.MethodGet, c.labPath(lab, folder)+"/nodes", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	nodes := map[string]Node{}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &nodes); err != nil {
			return nil, fmt.Errorf("list nodes: decoding: %w", err)
		}
	}
	return nodes, nil
}

// NodeIDByName resolves a node name to its id.
func (c *Client) NodeIDByName(ctx context.Context, lab, folder, name string) (string, error) {
	nodes, err := c.ListNodes(ctx, lab, folder)
	if err != nil {
		return "", err
	}
	for _, n := range nodes {
		if n.Name == name {
			return n.ID.String(), nil
		}
	}
	return "", fmt.Errorf("%w: node %q in lab %q", cerr.ErrNodeNotFound, name, lab)
}

// NodeInterfacesByID fetches a node's interface listing.
func (c *Client) NodeInterfacesByID(ctx context.Context, lab, folder, nodeID string) (*NodeInterfaces, error) {
	env, err := c.do(ctx, http.MethodGet,
		c.labPath(lab, folder)+"/nodes/"+nodeID+"/interfaces", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("node %s interfaces: %w", nodeID, err)
	}

	ifaces := &NodeInterfaces{}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, ifaces); err != nil {
			return nil, fmt.Errorf("node %s interfaces: decoding: %w", nodeID, err)
		}
	}
	return ifaces, nil
}

// findInterfaceIndex resolves an interface name to its wiring index using
// normalized name comparison, so "Gi0/0" finds "GigabitEthernet0/0".
func (c *Client) findInterfaceIndex(ctx context.Context, lab, folder, nodeID, ifName string) (int, error) {
	ifaces, err := c.NodeInterfacesByID(ctx, lab, folder, nodeID)
	if err != nil {
		return 0, err
	}
	wanted := normIfName(ifName)
	for idx, iface := range ifaces.Ethernet {
		if normIfName(iface.Name) == wanted {
			return idx, nil
		}
	}
	return 0, fmt.Errorf("%w: %q on node %s, have %v",
		cerr.ErrInterfaceNotFound, ifName, nodeID, ifaceNames(ifaces.Ethernet))
}

func ifaceNames(ifaces []Interface) []string {
	names := make([]string, 0, len(ifaces))
	for _, i := range ifaces {
		names = append(names, i.Name)
	}
	return names
}

// ConnectInterface attaches a node interface to a network. Like network
// creation this must mimic the legacy UI: a raw compact JSON body of the form
// {"<ifindex>":<netid>} inside a urlencoded content type.
func (c *Client) ConnectInterface(ctx context.Context, lab, folder, nodeID, ifName, networkID string) error {
	idx, err := c.findInterfaceIndex(ctx, lab, folder, nodeID, ifName)
	if err != nil {
		return err
	}

	netID, err := strconv.Atoi(networkID)
	if err != nil {
		return fmt.Errorf("connect interface: bad network id %q: %w", networkID, err)
	}
	payload := map[string]int{strconv.Itoa(idx): netID}

	env, err := c.doUI(ctx, http.MethodPut,
		c.labPath(lab, folder)+"/nodes/"+nodeID+"/interfaces", payload, false)
	if err != nil {
		return fmt.Errorf("connect %s of node %s to net %s: %w", ifName, nodeID, networkID, err)
	}
	if env.Status != "success" {
		return fmt.Errorf("connect %s of node %s to net %s: %s", ifName, nodeID, networkID, env.Message)
	}
	log.Debugf("wired node %s %s -> network %s", nodeID, ifName, networkID)
	return nil
}

// StartAllNodes boots every node in the lab.
func (c *Client) StartAllNodes(ctx context.Context, lab, folder string) error {
	env, err := c.do(ctx, http.MethodGet, c.labPath(lab, folder)+"/nodes/start", nil,
		map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return fmt.Errorf("start nodes: %w", err)
	}
	if env.Status != "success" {
		return fmt.Errorf("start nodes: %s", env.Message)
	}
	log.Infof("started all nodes in lab %q", lab)
	return nil
}
