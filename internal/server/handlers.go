package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/reoring/jsongram"
	"github.com/reoring/jsongram/grammar"
	"github.com/reoring/jsongram/middleware"
	"github.com/reoring/jsongram/sample"
)

type compileRequest struct {
	Name      string          `json:"name"`
	Sample    json.RawMessage `json:"sample"`
	Shape     json.RawMessage `json:"shape"`
	Keys      string          `json:"keys"`
	Separator string          `json:"separator"`
}

type compileResponse struct {
	Grammar string                    `json:"grammar"`
	Root    string                    `json:"root"`
	Entry   string                    `json:"entry"`
	Issues  []middleware.IssuePayload `json:"issues"`
}

type checkRequest struct {
	Grammar string `json:"grammar"`
	Input   string `json:"input"`
	Rule    string `json:"rule"`
}

func (c *checkRequest) Decode(dec jsongram.Decoder) error {
	k, err := dec.Keyed()
	if err != nil {
		return err
	}
	if c.Grammar, err = k.String("grammar"); err != nil {
		return err
	}
	if c.Input, err = k.String("input"); err != nil {
		return err
	}
	rule, err := k.OptionalString("rule")
	if err != nil {
		return err
	}
	if rule != nil {
		c.Rule = *rule
	}
	return nil
}

type checkResponse struct {
	Accepted bool `json:"accepted"`
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) handleCompile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req compileRequest
		if err := s.readBody(w, r, &req); err != nil {
			middleware.WriteError(w, statusFor(err), err)
			return
		}

		src, err := source(req)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err)
			return
		}

		cc := s.cfg.Compile
		switch req.Keys {
		case "":
		case "relaxed", "declared":
			cc.Keys = req.Keys
		default:
			middleware.WriteError(w, http.StatusBadRequest, errors.New("keys must be relaxed or declared"))
			return
		}
		if req.Separator != "" {
			cc.Separator = req.Separator
		}
		g, err := jsongram.CompileWith(src, cc.Options(req.Name))
		if err != nil {
			iss, _ := jsongram.AsIssues(err)
			s.countIssues(iss)
			s.log.WithRequest(requestID(r)).Warnw("compile failed", "error", err)
			middleware.WriteError(w, http.StatusUnprocessableEntity, err)
			return
		}
		s.countIssues(g.Issues)
		s.metrics.rules.Observe(float64(len(g.Rules)))
		middleware.WriteJSON(w, http.StatusOK, compileResponse{
			Grammar: g.Text,
			Root:    g.Root,
			Entry:   g.Entry,
			Issues:  middleware.Payloads(g.Issues),
		})
	}
}

func (s *Server) handleCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := middleware.DecodedFromContext[checkRequest](r.Context())
		if !ok {
			middleware.WriteError(w, http.StatusInternalServerError, errors.New("check request not decoded"))
			return
		}
		g, err := grammar.Parse(req.Grammar)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err)
			return
		}
		rule := req.Rule
		if rule == "" {
			rule = s.cfg.Compile.RootRule
		}
		if !g.Has(rule) {
			middleware.WriteError(w, http.StatusBadRequest, errors.New("unknown rule "+rule))
			return
		}
		middleware.WriteJSON(w, http.StatusOK, checkResponse{Accepted: g.Accepts(rule, req.Input)})
	}
}

var (
	errNoSource   = errors.New("one of sample or shape is required")
	errTwoSources = errors.New("sample and shape are mutually exclusive")
)

func source(req compileRequest) (jsongram.Decodable, error) {
	hasSample, hasShape := len(req.Sample) > 0, len(req.Shape) > 0
	switch {
	case hasSample && hasShape:
		return nil, errTwoSources
	case hasSample:
		return sample.Parse(req.Sample)
	case hasShape:
		return jsongram.ParseShape(req.Shape)
	}
	return nil, errNoSource
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Server) countIssues(iss jsongram.Issues) {
	for _, it := range iss {
		s.metrics.issues.WithLabelValues(it.Code).Inc()
	}
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
