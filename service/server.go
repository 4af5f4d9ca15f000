// Package service exposes named bloom filters over http.
//
// Filters live in memory in a skip list ordered by name. Each one is guarded
// by its own RWMutex: Add takes the write lock, Exists and the encoders take
// the read lock. Save and load move filters to and from a filterstore.Store.
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-bloomfilter/bloom"
	"github.com/forestrie/go-bloomfilter/errkind"
	"github.com/forestrie/go-bloomfilter/filterstore"
	"github.com/gorilla/mux"
	"github.com/huandu/skiplist"
)

type entry struct {
	mu sync.RWMutex
	f  *bloom.Filter
}

type Server struct {
	log    logger.Logger
	cfg    Config
	store  filterstore.Store
	format filterstore.Format

	mu      sync.RWMutex
	filters *skiplist.SkipList // name -> *entry
}

type createRequest struct {
	Expected int     `json:"expected"`
	FPRate   float64 `json:"fp_rate"`
	Algo     string  `json:"algo,omitempty"`
}

type createResponse struct {
	Name string `json:"name"`
	M    int    `json:"m"`
	K    int    `json:"k"`
}

type filterInfo struct {
	Name string `json:"name"`
	M    int    `json:"m"`
	K    int    `json:"k"`
	Algo string `json:"algo"`
}

type listResponse struct {
	Filters []filterInfo `json:"filters"`
}

type existsResponse struct {
	Exists bool `json:"exists"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewServer(log logger.Logger, cfg Config, store filterstore.Store) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	format, _ := filterstore.ParseFormat(cfg.StoreFormat)
	return &Server{
		log:     log,
		cfg:     cfg,
		store:   store,
		format:  format,
		filters: skiplist.New(skiplist.String),
	}, nil
}

// Router returns the http handler for the api. Path variables are matched
// encoded so items may contain slashes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.UseEncodedPath()
	r.HandleFunc("/filters", s.HandleCreate).Methods(http.MethodPost)
	r.HandleFunc("/filters", s.HandleList).Methods(http.MethodGet)
	r.HandleFunc("/filters/{name}", s.HandleGetFilter).Methods(http.MethodGet)
	r.HandleFunc("/filters/{name}", s.HandleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/filters/{name}/items/{item}", s.HandleAdd).Methods(http.MethodPut)
	r.HandleFunc("/filters/{name}/items/{item}", s.HandleExists).Methods(http.MethodGet)
	r.HandleFunc("/filters/{name}/save", s.HandleSave).Methods(http.MethodPost)
	r.HandleFunc("/filters/{name}/load", s.HandleLoad).Methods(http.MethodPost)
	return r
}

func (s *Server) lookup(name string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	elem := s.filters.Get(name)
	if elem == nil {
		return nil, ErrUnknownFilter
	}
	return elem.Value.(*entry), nil
}

func (s *Server) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.Algo == "" {
		req.Algo = s.cfg.DefaultAlgorithm
	}
	m, err := bloom.OptimalM(req.Expected, req.FPRate)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if m > s.cfg.MaxBits {
		s.fail(w, r, fmt.Errorf("%w: %d bits, limit %d", ErrFilterTooLarge, m, s.cfg.MaxBits))
		return
	}
	f, err := bloom.New(req.Expected, req.FPRate, bloom.WithAlgorithm(req.Algo))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	name := filterstore.NewName()
	s.mu.Lock()
	s.filters.Set(name, &entry{f: f})
	s.mu.Unlock()

	s.writeJSON(w, http.StatusCreated, createResponse{Name: name, M: f.M(), K: f.K()})
}

func (s *Server) HandleGetFilter(w http.ResponseWriter, r *http.Request) {
	name, _, err := pathVars(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := s.lookup(name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e.mu.RLock()
	data, err := e.f.MarshalJSON()
	e.mu.RUnlock()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) HandleAdd(w http.ResponseWriter, r *http.Request) {
	name, item, err := pathVars(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := s.lookup(name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e.mu.Lock()
	e.f.AddString(item)
	e.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HandleExists(w http.ResponseWriter, r *http.Request) {
	name, item, err := pathVars(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := s.lookup(name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e.mu.RLock()
	exists := e.f.ExistsString(item)
	e.mu.RUnlock()
	s.writeJSON(w, http.StatusOK, existsResponse{Exists: exists})
}

func (s *Server) HandleSave(w http.ResponseWriter, r *http.Request) {
	name, _, err := pathVars(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := s.lookup(name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e.mu.RLock()
	err = filterstore.Save(r.Context(), s.store, name, e.f, s.format)
	e.mu.RUnlock()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLoad replaces the in memory filter with the stored one, creating the
// name if it is not already known.
func (s *Server) HandleLoad(w http.ResponseWriter, r *http.Request) {
	name, _, err := pathVars(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	f, err := filterstore.Load(r.Context(), s.store, name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.mu.Lock()
	elem := s.filters.Get(name)
	if elem == nil {
		s.filters.Set(name, &entry{f: f})
	}
	s.mu.Unlock()
	if elem != nil {
		e := elem.Value.(*entry)
		e.mu.Lock()
		e.f = f
		e.mu.Unlock()
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleList reports the filters whose names start with the prefix query
// parameter, in name order.
func (s *Server) HandleList(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	resp := listResponse{Filters: []filterInfo{}}

	s.mu.RLock()
	for elem := s.filters.Find(prefix); elem != nil; elem = elem.Next() {
		name := elem.Key().(string)
		if !strings.HasPrefix(name, prefix) {
			break
		}
		e := elem.Value.(*entry)
		e.mu.RLock()
		resp.Filters = append(resp.Filters, filterInfo{Name: name, M: e.f.M(), K: e.f.K(), Algo: e.f.Algorithm()})
		e.mu.RUnlock()
	}
	s.mu.RUnlock()

	s.writeJSON(w, http.StatusOK, resp)
}

// HandleDelete forgets the in memory filter. Anything saved is untouched.
func (s *Server) HandleDelete(w http.ResponseWriter, r *http.Request) {
	name, _, err := pathVars(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.mu.Lock()
	removed := s.filters.Remove(name)
	s.mu.Unlock()
	if removed == nil {
		s.fail(w, r, ErrUnknownFilter)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathVars(r *http.Request) (name, item string, err error) {
	vars := mux.Vars(r)
	if name, err = url.PathUnescape(vars["name"]); err != nil {
		return "", "", filterstore.ErrBadName
	}
	if err = filterstore.CheckName(name); err != nil {
		return "", "", err
	}
	if raw, ok := vars["item"]; ok {
		if item, err = url.PathUnescape(raw); err != nil {
			return "", "", err
		}
	}
	return name, item, nil
}

// StatusFor maps an error to the http status reported for it.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, filterstore.ErrCorrupt):
		return http.StatusInternalServerError
	case errors.Is(err, ErrUnknownFilter), errors.Is(err, filterstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, filterstore.ErrBadName):
		return http.StatusBadRequest
	case errkind.Of(err) != errkind.KindNone:
		return http.StatusBadRequest
	case errors.As(err, new(url.EscapeError)):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.writeError(w, r, StatusFor(err), err)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Infof("%s %s: %v", r.Method, r.URL.Path, err)
	} else {
		s.log.Debugf("%s %s: %d %v", r.Method, r.URL.Path, status, err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Infof("encoding response: %v", err)
	}
}
