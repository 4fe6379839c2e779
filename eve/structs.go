package eve

import "encoding/json"

// envelope is the response wrapper every EVE endpoint returns.
type envelope struct {
	Code    int             `json:"code"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Network is one network object inside a lab. EVE is inconsistent about
// numeric field types across builds, hence json.Number.
type Network struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
	Type string      `json:"type"`
}

// Node is one node object as reported by the nodes listing.
type Node struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Template string      `json:"template"`
	Image    string      `json:"image"`
	Console  string      `json:"console"`
	Status   json.Number `json:"status"`
	URL      string      `json:"url"`
}

// Interface is one attachable interface of a node.
type Interface struct {
	Name      string      `json:"name"`
	NetworkID json.Number `json:"network_id"`
}

// NodeInterfaces groups a node's interfaces by media type.
type NodeInterfaces struct {
	Ethernet []Interface `json:"ethernet"`
	Serial   []Interface `json:"serial"`
}

// NodeSpec describes a node to create. Zero values take the qemu/vios
// defaults used by DefaultedNodeSpec.
type NodeSpec struct {
	Name     string
	Type     string
	Template string
	Image    string
	Icon     string
	Left     string
	Top      string
	RAM      string
	CPU      int
	Ethernet int
	Console  string
	Config   string
	Delay    int
}

// NetworkSpec describes a network (bridge/cloud object) to create.
type NetworkSpec struct {
	Name       string
	Type       string
	Left       int
	Top        int
	Visibility int
	Icon       string
}
