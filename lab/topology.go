package lab

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Default node parameters, tuned to the vIOS image family.
const (
	DefaultSwitchName     = "SW1"
	DefaultSwitchTemplate = "viosl2"
	DefaultRouterTemplate = "vios"
	DefaultRouterUplink   = "GigabitEthernet0/0"
)

// DefaultSwitchPorts covers up to seven routers on a vIOS-L2 switch.
var DefaultSwitchPorts = []string{
	"GigabitEthernet0/1",
	"GigabitEthernet0/2",
	"GigabitEthernet0/3",
	"GigabitEthernet1/0",
	"GigabitEthernet1/1",
	"GigabitEthernet1/2",
	"GigabitEthernet1/3",
}

// Topology is the user-supplied lab definition: one switch, N routers, each
// router's uplink wired to a dedicated switch port through a per-link bridge
// network.
type Topology struct {
	Name    string       `yaml:"name"`
	Folder  string       `yaml:"folder,omitempty"`
	Switch  SwitchSpec   `yaml:"switch,omitempty"`
	Routers []RouterSpec `yaml:"routers"`
	// Start controls whether nodes boot right after wiring; default true.
	Start *bool `yaml:"start,omitempty"`
}

type SwitchSpec struct {
	Name     string   `yaml:"name,omitempty"`
	Template string   `yaml:"template,omitempty"`
	Image    string   `yaml:"image,omitempty"`
	Ports    []string `yaml:"ports,omitempty"`
}

type RouterSpec struct {
	Name     string `yaml:"name"`
	Template string `yaml:"template,omitempty"`
	Image    string `yaml:"image,omitempty"`
	Uplink   string `yaml:"uplink,omitempty"`
	// Config points at a file of configuration lines pushed verbatim.
	Config string `yaml:"config,omitempty"`
	// Verify lists show commands run after the push; output is captured,
	// never interpreted.
	Verify []string `yaml:"verify,omitempty"`
}

// ParseTopologyFile reads, defaults and validates a topology definition.
func ParseTopologyFile(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology file: %w", err)
	}
	t := &Topology{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parsing topology file %s: %w", path, err)
	}
	t.SetDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Topology) SetDefaults() {
	if t.Switch.Name == "" {
		t.Switch.Name = DefaultSwitchName
	}
	if t.Switch.Template == "" {
		t.Switch.Template = DefaultSwitchTemplate
	}
	if len(t.Switch.Ports) == 0 {
		t.Switch.Ports = append([]string{}, DefaultSwitchPorts...)
	}
	for i := range t.Routers {
		if t.Routers[i].Template == "" {
			t.Routers[i].Template = DefaultRouterTemplate
		}
		if t.Routers[i].Uplink == "" {
			t.Routers[i].Uplink = DefaultRouterUplink
		}
	}
}

func (t *Topology) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("topology has no lab name")
	}
	if len(t.Routers) == 0 {
		return fmt.Errorf("topology needs at least one router, e.g. R1")
	}
	if len(t.Routers) > len(t.Switch.Ports) {
		return fmt.Errorf("not enough switch ports: %d routers, %d ports",
			len(t.Routers), len(t.Switch.Ports))
	}
	seen := map[string]struct{}{t.Switch.Name: {}}
	for _, r := range t.Routers {
		if r.Name == "" {
			return fmt.Errorf("router without a name")
		}
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("duplicate node name %q", r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	return nil
}

// StartNodes reports whether the lab should boot after deploy.
func (t *Topology) StartNodes() bool {
	return t.Start == nil || *t.Start
}
