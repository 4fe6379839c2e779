package eve

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/evelabs/evectl/console"
	cerr "github.com/evelabs/evectl/errors"
)

// ConsoleInfo is a resolved console endpoint for a named node.
type ConsoleInfo struct {
	Endpoint console.Endpoint
	NodeID   string
	NodeName string
}

var clientTokenRE = regexp.MustCompile(`/client/([^/?#]+)`)

// NodeDetail returns the raw node detail object. Builds differ wildly in
// which fields carry the console port, so this stays a generic map.
func (c *Client) NodeDetail(ctx context.Context, lab, folder, nodeID string) (map[string]interface{}, error) {
	env, err := c.do(ctx, http.MethodGet, c.labPath(lab, folder)+"/nodes/"+nodeID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("node %s detail: %w", nodeID, err)
	}
	detail := map[string]interface{}{}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &detail); err != nil {
			return nil, fmt.Errorf("node %s detail: decoding: %w", nodeID, err)
		}
	}
	return detail, nil
}

// ConsoleEndpoint resolves the telnet console endpoint for a node by name.
// The port is searched in three places, in order: direct numeric detail keys,
// a numeric console field, and finally the base64 token inside the HTML5
// console URL (/client/<b64>), whose decoded form starts with the port number.
func (c *Client) ConsoleEndpoint(ctx context.Context, lab, folder, nodeName string) (*ConsoleInfo, error) {
	nodeID, err := c.NodeIDByName(ctx, lab, folder, nodeName)
	if err != nil {
		return nil, err
	}

	detail, err := c.NodeDetail(ctx, lab, folder, nodeID)
	if err != nil {
		return nil, err
	}

	port := 0
	for _, key := range []string{"port", "console_port", "telnet_port", "tcp_port"} {
		if p, ok := numericField(detail[key]); ok {
			port = p
			break
		}
	}
	if port == 0 {
		if p, ok := numericField(detail["console"]); ok {
			port = p
		}
	}
	if port == 0 {
		if u, _ := detail["url"].(string); u != "" {
			port = portFromConsoleURL(u)
		}
	}
	if port == 0 {
		keys := make([]string, 0, len(detail))
		for k := range detail {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: node %q, detail keys %v", cerr.ErrNoConsolePort, nodeName, keys)
	}

	info := &ConsoleInfo{
		Endpoint: console.Endpoint{Host: c.Host(), Port: port},
		NodeID:   nodeID,
		NodeName: nodeName,
	}
	log.Debugf("console endpoint for %q: %s", nodeName, info.Endpoint)
	return info, nil
}

// numericField extracts a port from JSON values that may arrive as float64,
// json-decoded int or numeric string.
func numericField(v interface{}) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t > 0 {
			return int(t), true
		}
	case json.Number:
		if p, err := t.Int64(); err == nil && p > 0 {
			return int(p), true
		}
	case string:
		if p, err := strconv.Atoi(strings.TrimSpace(t)); err == nil && p > 0 {
			return p, true
		}
	}
	return 0, false
}

var leadingDigitsRE = regexp.MustCompile(`^(\d+)`)

// portFromConsoleURL decodes the /client/<base64> token of an HTML5 console
// URL; the decoded token starts with the telnet port.
func portFromConsoleURL(u string) int {
	m := clientTokenRE.FindStringSubmatch(u)
	if m == nil {
		return 0
	}
	decoded, err := base64.StdEncoding.DecodeString(m[1])
	if err != nil {
		// some builds emit unpadded tokens
		decoded, err = base64.RawStdEncoding.DecodeString(m[1])
		if err != nil {
			return 0
		}
	}
	d := leadingDigitsRE.FindString(string(decoded))
	if d == "" {
		return 0
	}
	port, err := strconv.Atoi(d)
	if err != nil {
		return 0
	}
	return port
}
