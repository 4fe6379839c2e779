package lab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evelabs/evectl/eve"
)

// fakeEve is an in-process EVE-NG API good enough for one lab with one
// switch (id 1) and one router (id 2).
type fakeEve struct {
	mu          sync.Mutex
	labsCreated []string
	nodesAdded  []string
	netsAdded   []string
	wirings     []string // "<nodeID>:<body>"
	started     bool
	consolePort int
}

func (f *fakeEve) server(t *testing.T) *httptest.Server {
	t.Helper()

	ok := func(w http.ResponseWriter, data interface{}) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 200, "status": "success", "data": data,
		})
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		ok(w, nil)
	})
	mux.HandleFunc("/api/auth", func(w http.ResponseWriter, _ *http.Request) {
		ok(w, map[string]string{"folder": "/"})
	})
	mux.HandleFunc("/api/labs", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		f.labsCreated = append(f.labsCreated, fmt.Sprint(payload["name"]))
		f.mu.Unlock()
		ok(w, nil)
	})
	mux.HandleFunc("/api/labs/demo.unl/nodes", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var payload map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			f.mu.Lock()
			f.nodesAdded = append(f.nodesAdded, fmt.Sprint(payload["name"]))
			f.mu.Unlock()
			ok(w, nil)
			return
		}
		ok(w, map[string]interface{}{
			"1": map[string]interface{}{"id": 1, "name": "SW1", "template": "viosl2"},
			"2": map[string]interface{}{"id": 2, "name": "R1", "template": "vios"},
		})
	})
	mux.HandleFunc("/api/labs/demo.unl/networks", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			body, _ := io.ReadAll(r.Body)
			f.mu.Lock()
			f.netsAdded = append(f.netsAdded, string(body))
			f.mu.Unlock()
			ok(w, map[string]interface{}{"id": 7})
			return
		}
		ok(w, map[string]interface{}{})
	})
	wire := func(nodeID string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPut {
				body, _ := io.ReadAll(r.Body)
				f.mu.Lock()
				f.wirings = append(f.wirings, nodeID+":"+string(body))
				f.mu.Unlock()
				ok(w, nil)
				return
			}
			names := []map[string]interface{}{
				{"name": "GigabitEthernet0/0"},
				{"name": "GigabitEthernet0/1"},
				{"name": "GigabitEthernet0/2"},
			}
			ok(w, map[string]interface{}{"ethernet": names})
		}
	}
	mux.HandleFunc("/api/labs/demo.unl/nodes/1/interfaces", wire("1"))
	mux.HandleFunc("/api/labs/demo.unl/nodes/2/interfaces", wire("2"))
	mux.HandleFunc("/api/labs/demo.unl/nodes/start", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		f.started = true
		f.mu.Unlock()
		ok(w, nil)
	})
	mux.HandleFunc("/api/labs/demo.unl/nodes/2", func(w http.ResponseWriter, _ *http.Request) {
		ok(w, map[string]interface{}{"name": "R1", "port": f.consolePort})
	})
	mux.HandleFunc("/api/labs/demo.unl", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			ok(w, nil)
			return
		}
		http.NotFound(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func loggedInClient(t *testing.T, srv *httptest.Server) *eve.Client {
	t.Helper()
	client, err := eve.NewClient(eve.Config{
		BaseURL:  srv.URL,
		Username: "admin",
		Password: "eve",
	})
	require.NoError(t, err)
	require.NoError(t, client.Login(context.Background()))
	return client
}

func testTopology() *Topology {
	topo := &Topology{
		Name:    "demo",
		Routers: []RouterSpec{{Name: "R1"}},
	}
	topo.SetDefaults()
	return topo
}

func TestBuilderDeploy(t *testing.T) {
	f := &fakeEve{}
	srv := f.server(t)
	client := loggedInClient(t, srv)

	plan, err := NewBuilder(client, testTopology()).Deploy(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"demo"}, f.labsCreated)
	// switch first, then routers
	assert.Equal(t, []string{"SW1", "R1"}, f.nodesAdded)
	require.Len(t, f.netsAdded, 1)
	assert.Contains(t, f.netsAdded[0], `"name":"L_R1_SW1"`)

	// router uplink Gi0/0 is index 0, switch port Gi0/1 is index 1
	assert.Equal(t, []string{`2:{"0":7}`, `1:{"1":7}`}, f.wirings)

	assert.True(t, f.started)
	require.Len(t, plan.Links, 1)
	assert.Equal(t, "L_R1_SW1", plan.Links[0].Network)
	assert.Equal(t, "7", plan.Links[0].NetworkID)
	assert.True(t, plan.Started)
}

func TestBuilderDeployNoStart(t *testing.T) {
	f := &fakeEve{}
	srv := f.server(t)
	client := loggedInClient(t, srv)

	topo := testTopology()
	noStart := false
	topo.Start = &noStart

	plan, err := NewBuilder(client, topo).Deploy(context.Background())
	require.NoError(t, err)
	assert.False(t, f.started)
	assert.False(t, plan.Started)
}

func TestBuilderDestroy(t *testing.T) {
	f := &fakeEve{}
	srv := f.server(t)
	client := loggedInClient(t, srv)

	assert.NoError(t, NewBuilder(client, testTopology()).Destroy(context.Background()))
}
