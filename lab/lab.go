// Package lab orchestrates EVE-NG lab builds and device configuration: it
// turns a Topology into platform API calls, then drives each booted device's
// console to a usable, configured state.
package lab

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/evelabs/evectl/eve"
)

// Per-link network placement: clouds sit in a row so they don't overlap.
const (
	netBaseLeft = 450
	netBaseTop  = 330
	netStepLeft = 140
)

// Link records one wired router-switch connection.
type Link struct {
	Router          string
	RouterInterface string
	Switch          string
	SwitchInterface string
	Network         string
	NetworkID       string
}

// Plan is the outcome of a deploy.
type Plan struct {
	Lab     string
	Folder  string
	Links   []Link
	Started bool
}

// Builder provisions a topology on an EVE server.
type Builder struct {
	Client *eve.Client
	Topo   *Topology
}

func NewBuilder(client *eve.Client, topo *Topology) *Builder {
	return &Builder{Client: client, Topo: topo}
}

// Deploy creates the lab, its nodes and per-link networks, wires every router
// uplink to its switch port and optionally starts all nodes.
func (b *Builder) Deploy(ctx context.Context) (*Plan, error) {
	t := b.Topo

	if err := b.Client.CreateLab(ctx, t.Name, t.Folder); err != nil {
		return nil, err
	}

	err := b.Client.AddNode(ctx, t.Name, t.Folder, eve.NodeSpec{
		Name:     t.Switch.Name,
		Template: t.Switch.Template,
		Image:    t.Switch.Image,
		Ethernet: 8,
		Icon:     "Switch.png",
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating switch")
	}

	for _, r := range t.Routers {
		err := b.Client.AddNode(ctx, t.Name, t.Folder, eve.NodeSpec{
			Name:     r.Name,
			Template: r.Template,
			Image:    r.Image,
			Ethernet: 4,
			Icon:     "Router.png",
		})
		if err != nil {
			return nil, errors.Wrapf(err, "creating router %s", r.Name)
		}
	}

	switchID, err := b.Client.NodeIDByName(ctx, t.Name, t.Folder, t.Switch.Name)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Lab: t.Name, Folder: t.Folder}

	for i, r := range t.Routers {
		routerID, err := b.Client.NodeIDByName(ctx, t.Name, t.Folder, r.Name)
		if err != nil {
			return nil, err
		}

		netName := fmt.Sprintf("L_%s_%s", r.Name, t.Switch.Name)
		netID, err := b.Client.AddNetwork(ctx, t.Name, t.Folder, eve.NetworkSpec{
			Name:       netName,
			Type:       "bridge",
			Left:       netBaseLeft + i*netStepLeft,
			Top:        netBaseTop,
			Visibility: 1,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "creating link network %s", netName)
		}

		if err := b.Client.ConnectInterface(ctx, t.Name, t.Folder, routerID, r.Uplink, netID); err != nil {
			return nil, errors.Wrapf(err, "wiring %s", r.Name)
		}
		swPort := t.Switch.Ports[i]
		if err := b.Client.ConnectInterface(ctx, t.Name, t.Folder, switchID, swPort, netID); err != nil {
			return nil, errors.Wrapf(err, "wiring %s", t.Switch.Name)
		}

		plan.Links = append(plan.Links, Link{
			Router:          r.Name,
			RouterInterface: r.Uplink,
			Switch:          t.Switch.Name,
			SwitchInterface: swPort,
			Network:         netName,
			NetworkID:       netID,
		})
		log.Infof("linked %s %s <-> %s %s via %s", r.Name, r.Uplink, t.Switch.Name, swPort, netName)
	}

	if t.StartNodes() {
		if err := b.Client.StartAllNodes(ctx, t.Name, t.Folder); err != nil {
			return nil, err
		}
		plan.Started = true
	}

	return plan, nil
}

// Destroy deletes the lab.
func (b *Builder) Destroy(ctx context.Context) error {
	return b.Client.DeleteLab(ctx, b.Topo.Name, b.Topo.Folder)
}
