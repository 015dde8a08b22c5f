package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/expr"
	"github.com/koustreak/relcore/internal/parser"
	"github.com/koustreak/relcore/internal/schema"
)

type queryRequest struct {
	SQL string `json:"sql"`
}

type updateRequest struct {
	Set   schema.Row      `json:"set"`
	Where *expr.Predicate `json:"where,omitempty"`
}

type deleteRequest struct {
	Where *expr.Predicate `json:"where,omitempty"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Table   string `json:"table,omitempty"`
	Column  string `json:"column,omitempty"`
	Value   any    `json:"value,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	cmd, err := parser.Parse(req.SQL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, cmd)
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, &parser.ShowTables{})
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var ts schema.TableSchema
	if err := decodeBody(w, r, &ts, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, &parser.CreateTable{Schema: ts})
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, &parser.Describe{Table: chi.URLParam(r, "table")})
}

func (s *Server) handleDropTable(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.exec.Catalog().DropTable(chi.URLParam(r, "table"))
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var row schema.Row
	if err := decodeBody(w, r, &row, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	id, err := s.exec.Engine().Insert(chi.URLParam(r, "table"), row)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": uint64(id), "affectedRows": 1})
}

// handleSelect reads ?columns=a,b and an optional ?column=&op=&value= filter
// whose value is a SQL literal.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cmd := &parser.Select{Table: chi.URLParam(r, "table")}

	if cols := q.Get("columns"); cols != "" {
		for _, c := range strings.Split(cols, ",") {
			cmd.Columns = append(cmd.Columns, strings.TrimSpace(c))
		}
	}

	where, err := whereFromQuery(q.Get("column"), q.Get("op"), q.Get("value"), q.Has("value"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cmd.Where = where
	s.respond(w, r, http.StatusOK, cmd)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, &parser.Update{
		Table: chi.URLParam(r, "table"),
		Set:   req.Set,
		Where: req.Where,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, &parser.Delete{
		Table: chi.URLParam(r, "table"),
		Where: req.Where,
	})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cmd := &parser.Join{
		LeftTable:   q.Get("left"),
		LeftColumn:  q.Get("leftColumn"),
		RightTable:  q.Get("right"),
		RightColumn: q.Get("rightColumn"),
	}
	if cmd.LeftTable == "" || cmd.LeftColumn == "" || cmd.RightTable == "" || cmd.RightColumn == "" {
		s.writeError(w, r, errs.New(errs.ErrKindInvalidInput, "left, leftColumn, right and rightColumn are required"))
		return
	}
	s.respond(w, r, http.StatusOK, cmd)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, cmd parser.Command) {
	res, err := s.run(cmd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, res)
}

func whereFromQuery(column, op, literal string, hasValue bool) (*expr.Predicate, error) {
	if column == "" && op == "" && !hasValue {
		return nil, nil
	}
	if column == "" || !hasValue {
		return nil, errs.New(errs.ErrKindInvalidInput, "filter needs column and value")
	}
	if op == "" {
		op = string(expr.OpEq)
	}
	parsedOp, err := expr.ParseOp(op)
	if err != nil {
		return nil, err
	}
	v, err := parser.ParseLiteral(literal)
	if err != nil {
		return nil, err
	}
	return &expr.Predicate{Column: column, Op: parsedOp, Value: v}, nil
}

// decodeBody reads a JSON body into dst. An empty body is accepted only when
// optional is set.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid request body", err)
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Kind: errs.KindOf(err).String(), Message: err.Error()}

	var e *errs.Error
	if errors.As(err, &e) {
		body.Message = e.Message
		body.Table = e.Table
		body.Column = e.Column
		body.Value = e.Value
	}
	if status >= http.StatusInternalServerError {
		s.log.ErrorWith("request failed", err, map[string]interface{}{"path": r.URL.Path})
	}
	writeJSON(w, status, map[string]errorBody{"error": body})
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.ErrKindValidation, errs.ErrKindInvalidInput:
		return http.StatusBadRequest
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindConstraint, errs.ErrKindDuplicateTable:
		return http.StatusConflict
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
