package main

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/arraypress/flyouts/core/hostfn"
	"github.com/arraypress/flyouts/domain/panel"
)

// memStore is the in-memory record store backing the built-in manifest
// callbacks. Records live for the lifetime of the process.
type memStore struct {
	mu      sync.RWMutex
	records map[string]map[string]any
	nextID  int
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]map[string]any), nextID: 1}
}

func (s *memStore) load(id string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, panel.ErrRecordNotFound
	}
	return rec, nil
}

func (s *memStore) save(id string, data map[string]any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" || id == "0" {
		id = strconv.Itoa(s.nextID)
		s.nextID++
	}
	rec, ok := s.records[id]
	if !ok {
		rec = make(map[string]any, len(data))
		s.records[id] = rec
	}
	for k, v := range data {
		rec[k] = v
	}
	rec["id"] = id
	return id, nil
}

func (s *memStore) delete(id string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return nil, panel.ErrRecordNotFound
	}
	delete(s.records, id)
	return true, nil
}

// search matches the term against every string value of every record.
// Hydration by include ids ignores the term.
func (s *memStore) search(term string, include []string) ([]panel.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(include) > 0 {
		out := make([]panel.SearchResult, 0, len(include))
		for _, id := range include {
			if rec, ok := s.records[id]; ok {
				out = append(out, panel.SearchResult{ID: id, Text: recordLabel(id, rec)})
			}
		}
		return out, nil
	}

	term = strings.ToLower(term)
	var out []panel.SearchResult
	for id, rec := range s.records {
		for _, v := range rec {
			sv, ok := v.(string)
			if !ok {
				continue
			}
			if term == "" || strings.Contains(strings.ToLower(sv), term) {
				out = append(out, panel.SearchResult{ID: id, Text: recordLabel(id, rec)})
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.(string) < out[j].ID.(string)
	})
	return out, nil
}

func recordLabel(id string, rec map[string]any) string {
	for _, key := range []string{"title", "name", "number", "label"} {
		if v, ok := rec[key].(string); ok && v != "" {
			return v
		}
	}
	return "#" + id
}

// storeCallbacks registers the store under the "memory.*" callback
// names that manifests reference.
func storeCallbacks(s *memStore) *hostfn.Registry {
	fns := hostfn.New()
	fns.RegisterLoad("memory.load", s.load)
	fns.RegisterSave("memory.save", s.save)
	fns.RegisterDelete("memory.delete", s.delete)
	fns.RegisterSearch("memory.search", s.search)
	return fns
}
