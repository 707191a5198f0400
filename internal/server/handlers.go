package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/gexftool/pkg/buildinfo"
	"github.com/matzehuels/gexftool/pkg/dynamic"
	"github.com/matzehuels/gexftool/pkg/errors"
	"github.com/matzehuels/gexftool/pkg/graph"
	"github.com/matzehuels/gexftool/pkg/pipeline"
)

// Content types of snapshot formats.
var contentTypes = map[string]string{
	pipeline.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
}

const gexfContentType = "application/gexf+xml"

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// DocumentBody is the JSON form of a graph and its event stream, as
// returned by /v1/read and accepted by /v1/write.
type DocumentBody struct {
	Graph  graph.Document `json:"graph"`
	Events dynamic.Stream `json:"events"`
}

// ReadResponse is the body of a successful /v1/read.
type ReadResponse struct {
	DocumentBody
	Hash     string         `json:"hash"`
	Stats    pipeline.Stats `json:"stats"`
	CacheHit bool           `json:"cache_hit"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	res, ok := s.readBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ReadResponse{
		DocumentBody: DocumentBody{Graph: graph.ToDocument(res.Graph), Events: res.Events},
		Hash:         res.Hash,
		Stats:        res.Stats,
		CacheHit:     res.CacheHit,
	})
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	var body DocumentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, bodyError(err, "decode document"))
		return
	}
	g, err := graph.FromDocument(body.Graph)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "graph"))
		return
	}
	if body.Events == nil {
		body.Events = dynamic.Stream{}
	}
	data, err := s.runner.Encode(r.Context(), &pipeline.Document{Graph: g, Events: body.Events})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", gexfContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := pipeline.SnapshotOptions{
		Step:    -1,
		Format:  q.Get("format"),
		Weights: q.Get("weights") == "true",
		Refresh: q.Get("refresh") == "true",
	}
	if opts.Format == "" {
		opts.Format = s.opts.Format
	}
	if v := q.Get("step"); v != "" {
		step, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "step %q is not an integer", v))
			return
		}
		opts.Step = step
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "snapshot options"))
		return
	}

	res, ok := s.readBody(w, r)
	if !ok {
		return
	}
	out, err := s.runner.Snapshot(r.Context(), res.Document, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[opts.Format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// readBody decodes the GEXF request body, writing the error response on
// failure.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (*pipeline.ReadResult, bool) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, bodyError(err, "read body"))
		return nil, false
	}
	if len(data) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "empty request body"))
		return nil, false
	}
	res, err := s.runner.Read(r.Context(), "request "+RequestIDFrom(r.Context()), data, r.URL.Query().Get("refresh") == "true")
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return res, true
}

func bodyError(err error, msg string) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return &statusError{status: http.StatusRequestEntityTooLarge, err: errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", tooLarge.Limit)}
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", msg)
}

// statusError overrides the status derived from the error code.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	var se *statusError
	if stderrors.As(err, &se) {
		status = se.status
	}
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	if status >= 500 {
		s.logger.Error("request failed", "id", RequestIDFrom(r.Context()), "err", err)
	} else {
		s.logger.Debug("request rejected", "id", RequestIDFrom(r.Context()), "code", code, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errors.UserMessage(err), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}
