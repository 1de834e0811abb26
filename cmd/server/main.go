// Command server exposes a loaded cartula catalog as a JSON REST API.
//
// Endpoints:
//
//	GET  /api/tables
//	GET  /api/languages
//	GET  /api/lookup?table=<name>&<axis>=<value>[,<value>...]
//	GET  /api/entries?table=<name>[&<axis>=<value>[,<value>...]]
//	POST /api/render   body: {"language":"...","tree":"[...]","semes":{...}}
//
// With -watch the catalog is rebuilt whenever the configuration or one of
// its tables changes; a failed rebuild keeps the previous catalog.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cours-de-latin/cartula"
)

// ---- JSON response types ------------------------------------------------

type lookupResponse struct {
	Table string            `json:"table"`
	Query map[string]string `json:"query"`
	Value string            `json:"value"`
}

type entryJSON struct {
	Binding map[string]string `json:"binding"`
	Value   string            `json:"value,omitempty"`
	Values  []string          `json:"values,omitempty"`
}

type entriesResponse struct {
	Table   string      `json:"table"`
	Entries []entryJSON `json:"entries"`
}

type renderRequest struct {
	Language string                         `json:"language"`
	Tree     string                         `json:"tree"`
	Semes    map[string]map[string][]string `json:"semes"`
}

type renderResponse struct {
	Text     string   `json:"text"`
	Complete bool     `json:"complete"`
	Errors   []string `json:"errors,omitempty"`
}

type namesResponse struct {
	Names []string `json:"names"`
}

type errorResponse struct {
	Error      string              `json:"error"`
	Candidates []map[string]string `json:"candidates,omitempty"`
}

// ---- helpers ------------------------------------------------------------

func bindingJSON(b cartula.Binding) map[string]string {
	out := make(map[string]string, len(b))
	for axis, f := range b {
		out[axis] = strings.Join(f, ",")
	}
	return out
}

// queryBinding reads every parameter except table as an axis.
func queryBinding(q url.Values) cartula.Binding {
	b := cartula.Binding{}
	for axis, values := range q {
		if axis == "table" {
			continue
		}
		var all []string
		for _, v := range values {
			all = append(all, strings.Split(v, ",")...)
		}
		b[axis] = cartula.Any(all...)
	}
	return b
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode error", zap.Error(err))
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// writeLookupError maps lookup failures to status codes.
func (s *server) writeLookupError(w http.ResponseWriter, err error) {
	var ambiguous *cartula.AmbiguousKeyError
	switch {
	case errors.As(err, &ambiguous):
		resp := errorResponse{Error: err.Error()}
		for _, c := range ambiguous.Candidates {
			resp.Candidates = append(resp.Candidates, bindingJSON(c))
		}
		s.writeJSON(w, http.StatusConflict, resp)
	case errors.Is(err, cartula.ErrKeyNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, cartula.ErrMissingAxis):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// ---- handlers -----------------------------------------------------------

type server struct {
	catalogs *reloader
	logger   *zap.Logger
}

func (s *server) handleTables(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	s.writeJSON(w, http.StatusOK, namesResponse{Names: s.catalogs.Catalog().Tables()})
}

func (s *server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	s.writeJSON(w, http.StatusOK, namesResponse{Names: s.catalogs.Catalog().Languages()})
}

func (s *server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	name := r.URL.Query().Get("table")
	store, ok := s.catalogs.Catalog().Flat(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("flat table %q not found", name))
		return
	}
	query := queryBinding(r.URL.Query())
	value, err := store.Lookup(query)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lookupResponse{Table: name, Query: bindingJSON(query), Value: value})
}

func (s *server) handleEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	name := r.URL.Query().Get("table")
	query := queryBinding(r.URL.Query())
	resp := entriesResponse{Table: name, Entries: []entryJSON{}}
	catalog := s.catalogs.Catalog()
	if store, ok := catalog.Flat(name); ok {
		for _, e := range store.Entries(query) {
			resp.Entries = append(resp.Entries, entryJSON{Binding: bindingJSON(e.Binding), Value: e.Value})
		}
	} else if store, ok := catalog.List(name); ok {
		for _, e := range store.Entries(query) {
			resp.Entries = append(resp.Entries, entryJSON{Binding: bindingJSON(e.Binding), Values: e.Value})
		}
	} else if store, ok := catalog.Set(name); ok {
		for _, e := range store.Entries(query) {
			resp.Entries = append(resp.Entries, entryJSON{Binding: bindingJSON(e.Binding)})
		}
	} else {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("table %q not found", name))
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var body renderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Tree == "" {
		s.writeError(w, http.StatusBadRequest, "body must be JSON with a non-empty 'tree' field")
		return
	}
	engine, ok := s.catalogs.Catalog().Engine(body.Language)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("language %q not found", body.Language))
		return
	}
	tree, err := cartula.ParseTree(body.Tree)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	semes := cartula.Semes{}
	for name, axes := range body.Semes {
		b := cartula.Binding{}
		for axis, values := range axes {
			b[axis] = cartula.Any(values...)
		}
		semes[name] = b
	}

	out := engine.Map(tree, semes, nil)
	resp := renderResponse{Text: out.Text, Complete: out.Complete()}
	for _, e := range out.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// routes wires the handlers behind a permissive CORS policy.
func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tables", s.handleTables)
	mux.HandleFunc("/api/languages", s.handleLanguages)
	mux.HandleFunc("/api/lookup", s.handleLookup)
	mux.HandleFunc("/api/entries", s.handleEntries)
	mux.HandleFunc("/api/render", s.handleRender)
	return cors.Default().Handler(mux)
}

// ---- main ---------------------------------------------------------------

func main() {
	configPath := flag.String("config", "cartula.yaml", "path to the catalog configuration")
	addr := flag.String("addr", ":8080", "listen address")
	debug := flag.Bool("debug", false, "log at debug level")
	watch := flag.Bool("watch", false, "reload the catalog when its files change")
	flag.Parse()

	zcfg := zap.NewProductionConfig()
	if *debug {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("loading catalog", zap.String("config", *configPath))
	catalogs, err := newReloader(*configPath, logger)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}
	logger.Info("catalog loaded", zap.Strings("tables", catalogs.Catalog().Tables()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &server{catalogs: catalogs, logger: logger}
	srv := &http.Server{Addr: *addr, Handler: s.routes()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", *addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if *watch {
		g.Go(func() error { return catalogs.watch(ctx) })
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("stopped")
}
