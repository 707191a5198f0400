package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gexftool/pkg/cache"
	"github.com/matzehuels/gexftool/pkg/dynamic"
	"github.com/matzehuels/gexftool/pkg/gexf"
)

const sampleGEXF = `<?xml version="1.0" encoding="UTF-8"?>
<gexf xmlns="http://www.gexf.net/1.2draft" version="1.2">
  <graph mode="dynamic" defaultedgetype="directed">
    <nodes>
      <node id="a"/>
      <node id="b"/>
      <node id="c" start="1"/>
    </nodes>
    <edges>
      <edge source="a" target="b" weight="2"/>
      <edge source="b" target="c" start="1" end="2"/>
    </edges>
  </graph>
</gexf>`

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	s := New(cache.NewNullCache(), log.New(io.Discard), opts)
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, Options{})

	t.Run("Assigned", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/healthz")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.Header.Get(RequestIDHeader) == "" {
			t.Error("missing X-Request-ID")
		}
	})

	t.Run("Propagated", func(t *testing.T) {
		const id = "6f1c2f8e-8f44-4b8a-a1a4-8f0f3bb0f0a1"
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
		req.Header.Set(RequestIDHeader, id)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if got := resp.Header.Get(RequestIDHeader); got != id {
			t.Errorf("X-Request-ID = %q, want %q", got, id)
		}
	})

	t.Run("InvalidReplaced", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
		req.Header.Set(RequestIDHeader, "not a uuid")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if got := resp.Header.Get(RequestIDHeader); got == "not a uuid" || got == "" {
			t.Errorf("X-Request-ID = %q, want a fresh UUID", got)
		}
	})
}

func TestRead(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := post(t, ts.URL+"/v1/read", gexfContentType, sampleGEXF)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body ReadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Graph.Nodes != 2 || len(body.Graph.Edges) != 1 || !body.Graph.Directed {
		t.Errorf("graph = %+v", body.Graph)
	}
	want := dynamic.Stream{dynamic.AddNode(2), dynamic.AddEdge(1, 2, 1), dynamic.Step(), dynamic.RemoveEdge(1, 2)}
	if len(body.Events) != len(want) {
		t.Fatalf("events = %v, want %v", body.Events, want)
	}
	for i := range want {
		if body.Events[i] != want[i] {
			t.Errorf("events[%d] = %v, want %v", i, body.Events[i], want[i])
		}
	}
	if body.Stats.Steps != 1 || body.Hash == "" {
		t.Errorf("stats = %+v hash = %q", body.Stats, body.Hash)
	}
}

func TestReadErrors(t *testing.T) {
	ts := newTestServer(t, Options{MaxBodyBytes: 1024})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"Empty", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"Malformed", "<gexf version=1.2><graph/></gexf>", http.StatusBadRequest, "INVALID_FORMAT"},
		{"TooLarge", strings.Repeat("x", 1025), http.StatusRequestEntityTooLarge, "INVALID_INPUT"},
		{"NotGEXF", "<html/>", http.StatusBadRequest, "INVALID_FORMAT"},
		{"Reference", `<gexf><graph><edges><edge source="a" target="b"/></edges></graph></gexf>`, http.StatusUnprocessableEntity, "REFERENCE_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/read", gexfContentType, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decodeError(t, resp); got.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", got.Code, tt.code, got.Error)
			}
		})
	}
}

func TestReadStateError(t *testing.T) {
	ts := newTestServer(t, Options{})
	const doc = `<gexf><graph mode="dynamic">
  <nodes><node id="a"/><node id="b" start="1"/></nodes>
  <edges><edge source="a" target="b" start="0"/></edges>
</graph></gexf>`

	resp := post(t, ts.URL+"/v1/read", gexfContentType, doc)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
	if got := decodeError(t, resp); got.Code != "STATE_ERROR" {
		t.Errorf("code = %q, want STATE_ERROR", got.Code)
	}
}

func TestWrite(t *testing.T) {
	ts := newTestServer(t, Options{})

	read := post(t, ts.URL+"/v1/read", gexfContentType, sampleGEXF)
	var doc ReadResponse
	if err := json.NewDecoder(read.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	payload, err := json.Marshal(doc.DocumentBody)
	if err != nil {
		t.Fatal(err)
	}

	resp := post(t, ts.URL+"/v1/write", "application/json", string(payload))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != gexfContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)

	g, s, err := gexf.ReadBytes(data)
	if err != nil {
		t.Fatalf("re-read written document: %v", err)
	}
	if g.NumberOfNodes() != 2 || !dynamic.SameShape(s, doc.Events) {
		t.Errorf("round trip: nodes = %d events = %v", g.NumberOfNodes(), s)
	}
}

func TestWriteErrors(t *testing.T) {
	ts := newTestServer(t, Options{})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"BadJSON", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"BadGraph", `{"graph":{"nodes":1,"edges":[{"source":0,"target":5}]}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"BadStream", `{"graph":{"nodes":1,"edges":[]},"events":[{"kind":"node_removal","u":7}]}`, http.StatusUnprocessableEntity, "REFERENCE_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/write", "application/json", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decodeError(t, resp); got.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", got.Code, tt.code, got.Error)
			}
		})
	}
}

func TestSnapshotDOT(t *testing.T) {
	ts := newTestServer(t, Options{})

	tests := []struct {
		query    string
		contains []string
		absent   []string
	}{
		{"?format=dot&step=0", []string{"digraph", "n0 -> n1", "n1 -> n2", `label="step 0"`}, nil},
		{"?format=dot&step=1", []string{"n2 [", `label="step 1"`}, []string{"n1 -> n2"}},
		{"?format=dot", []string{"n2 [", `label="final state"`}, []string{"n1 -> n2"}},
		{"?format=dot&step=0&weights=true", []string{`n0 -> n1 [label="2"]`}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/snapshot"+tt.query, gexfContentType, sampleGEXF)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
				t.Errorf("Content-Type = %q", ct)
			}
			data, _ := io.ReadAll(resp.Body)
			for _, s := range tt.contains {
				if !bytes.Contains(data, []byte(s)) {
					t.Errorf("output missing %q:\n%s", s, data)
				}
			}
			for _, s := range tt.absent {
				if bytes.Contains(data, []byte(s)) {
					t.Errorf("output contains %q:\n%s", s, data)
				}
			}
		})
	}
}

func TestSnapshotErrors(t *testing.T) {
	ts := newTestServer(t, Options{})

	for _, query := range []string{"?format=gif", "?step=soon"} {
		t.Run(query, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/snapshot"+query, gexfContentType, sampleGEXF)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestNotFoundAndMethod(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/v1/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/v1/read")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}
