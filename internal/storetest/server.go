// Package storetest serves an in-memory record store over fasthttp for tests.
// It speaks the same resources as the production store and records every
// request it receives.
package storetest

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

// Resource paths served by the fake store.
const (
	Properties   = "/imovel"
	Contracts    = "/aluguel"
	Installments = "/parcelas"
)

// BaseURL is the address clients should be configured with. The host is never
// resolved because connections go through Dial.
const BaseURL = "http://store.test"

// Record is one stored object, kept exactly as the client sent it.
type Record map[string]interface{}

// Request is a received call.
type Request struct {
	Method    string
	Path      string
	Body      []byte
	RequestID string
}

type failure struct {
	status int
	body   string
}

// Server is the fake store.
type Server struct {
	mu       sync.Mutex
	records  map[string]map[int64]Record
	nextID   int64
	requests []Request
	failures map[string]failure
	delay    time.Duration

	ln  *fasthttputil.InmemoryListener
	srv *fasthttp.Server
}

// New starts a fake store on an in-memory listener.
func New() *Server {
	s := &Server{
		records: map[string]map[int64]Record{
			Properties:   {},
			Contracts:    {},
			Installments: {},
		},
		failures: make(map[string]failure),
		ln:       fasthttputil.NewInmemoryListener(),
	}

	r := router.New()
	r.GET(Properties, s.list(Properties, nil))
	r.GET(Properties+"/disponiveis", s.list(Properties, isAvailable))
	r.GET(Properties+"/{id}", s.get(Properties))
	r.POST(Properties, s.save(Properties))
	r.DELETE(Properties+"/{id}", s.remove(Properties))

	r.GET(Contracts, s.list(Contracts, nil))
	r.POST(Contracts, s.save(Contracts))
	r.DELETE(Contracts+"/{id}", s.remove(Contracts))

	r.GET(Installments, s.list(Installments, nil))
	r.GET(Installments+"/vencimento", s.list(Installments, isOpen))
	r.POST(Installments, s.save(Installments))
	r.DELETE(Installments+"/{id}", s.remove(Installments))

	s.srv = &fasthttp.Server{Handler: s.intercept(r.Handler)}
	go func() { _ = s.srv.Serve(s.ln) }()
	return s
}

// Dial connects to the in-memory listener; pass it as the client dialer.
func (s *Server) Dial(string) (net.Conn, error) {
	return s.ln.Dial()
}

// Close stops accepting connections.
func (s *Server) Close() error {
	return s.ln.Close()
}

// Seed stores rec under resource, assigning an id when it has none, and
// returns the id.
func (s *Server) Seed(resource string, rec Record) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(resource, copyRecord(rec))
}

// Get returns a copy of a stored record.
func (s *Server) Get(resource string, id int64) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[resource][id]
	if !ok {
		return nil, false
	}
	return copyRecord(rec), true
}

// Count returns how many records a resource holds.
func (s *Server) Count(resource string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records[resource])
}

// Requests returns every call received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Mutations returns the received POST and DELETE calls.
func (s *Server) Mutations() []Request {
	var out []Request
	for _, req := range s.Requests() {
		if req.Method != fasthttp.MethodGet {
			out = append(out, req)
		}
	}
	return out
}

// ResetRequests forgets the recorded calls.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}

// Fail makes every later call to method and path answer with status and body.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	s.failures[method+" "+path] = failure{status: status, body: body}
	s.mu.Unlock()
}

// Recover removes all configured failures.
func (s *Server) Recover() {
	s.mu.Lock()
	s.failures = make(map[string]failure)
	s.mu.Unlock()
}

// SetDelay holds every response for d.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

func (s *Server) intercept(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		method := string(ctx.Method())
		path := string(ctx.Path())

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    method,
			Path:      path,
			Body:      append([]byte(nil), ctx.PostBody()...),
			RequestID: string(ctx.Request.Header.Peek("X-Request-ID")),
		})
		fail, failing := s.failures[method+" "+path]
		delay := s.delay
		s.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if failing {
			ctx.SetStatusCode(fail.status)
			ctx.SetBodyString(fail.body)
			return
		}
		next(ctx)
	}
}

func (s *Server) list(resource string, keep func(Record) bool) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		s.mu.Lock()
		ids := make([]int64, 0, len(s.records[resource]))
		for id := range s.records[resource] {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out := make([]Record, 0, len(ids))
		for _, id := range ids {
			rec := s.records[resource][id]
			if keep == nil || keep(rec) {
				out = append(out, rec)
			}
		}
		respondJSON(ctx, http.StatusOK, out)
		s.mu.Unlock()
	}
}

func (s *Server) get(resource string) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, ok := pathID(ctx)
		if !ok {
			ctx.SetStatusCode(http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		rec, found := s.records[resource][id]
		if !found {
			ctx.SetStatusCode(http.StatusNotFound)
			return
		}
		respondJSON(ctx, http.StatusOK, rec)
	}
}

func (s *Server) save(resource string) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var rec Record
		dec := json.NewDecoder(bytes.NewReader(ctx.PostBody()))
		dec.UseNumber()
		if err := dec.Decode(&rec); err != nil || rec == nil {
			ctx.SetStatusCode(http.StatusBadRequest)
			ctx.SetBodyString("malformed record")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if id, ok := recordID(rec); ok {
			if _, exists := s.records[resource][id]; !exists {
				ctx.SetStatusCode(http.StatusNotFound)
				return
			}
		}
		id := s.put(resource, rec)
		respondJSON(ctx, http.StatusOK, s.records[resource][id])
	}
}

func (s *Server) remove(resource string) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, ok := pathID(ctx)
		if !ok {
			ctx.SetStatusCode(http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, found := s.records[resource][id]; !found {
			ctx.SetStatusCode(http.StatusNotFound)
			return
		}
		delete(s.records[resource], id)
		ctx.SetStatusCode(http.StatusNoContent)
	}
}

// put stores rec and returns its id. Callers hold mu.
func (s *Server) put(resource string, rec Record) int64 {
	id, ok := recordID(rec)
	if !ok {
		s.nextID++
		id = s.nextID
		rec["id"] = json.Number(strconv.FormatInt(id, 10))
	} else if id > s.nextID {
		s.nextID = id
	}
	s.records[resource][id] = rec
	return id
}

func respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func pathID(ctx *fasthttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

func recordID(rec Record) (int64, bool) {
	switch v := rec["id"].(type) {
	case json.Number:
		id, err := v.Int64()
		return id, err == nil && id > 0
	case float64:
		return int64(v), v > 0
	case int:
		return int64(v), v > 0
	case int64:
		return v, v > 0
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil && id > 0
	}
	return 0, false
}

func isAvailable(rec Record) bool {
	v, _ := rec["disponivel"].(bool)
	return v
}

func isOpen(rec Record) bool {
	status, _ := rec["situacao"].(string)
	return !strings.EqualFold(status, "PAGA")
}

func copyRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
