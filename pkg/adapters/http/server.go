package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/netspec"
	"github.com/aretw0/netspec/internal/validator"
	"github.com/aretw0/netspec/pkg/codec"
	"github.com/aretw0/netspec/pkg/observability"
	"github.com/aretw0/netspec/pkg/ports"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 4 << 20

// Server implements the HTTP API on top of a Catalog.
type Server struct {
	Catalog  *netspec.Catalog
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
	MaxBody  int64
	doc      *openapi3.T
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics counts requests in m and serves g on /metrics.
func WithMetrics(m *observability.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Metrics = m
		s.Gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = l
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.MaxBody = n
	}
}

// NewHandler creates a new HTTP handler for the catalog. It fails if the
// embedded OpenAPI document does not validate.
func NewHandler(cat *netspec.Catalog, opts ...Option) (http.Handler, error) {
	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	s := &Server{
		Catalog:  cat,
		Gatherer: prometheus.DefaultGatherer,
		Logger:   slog.Default(),
		MaxBody:  DefaultMaxBodyBytes,
		doc:      doc,
	}
	for _, opt := range opts {
		opt(s)
	}

	return enableCORS(s.routes()), nil
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/specs", s.ListSpecs)
	r.Get("/specs/{name}", s.GetSpec)
	r.Put("/specs/{name}", s.PutSpec)
	r.Delete("/specs/{name}", s.DeleteSpec)
	r.Get("/specs/{name}/graph", s.GetSpecGraph)
	r.Post("/validate", s.Validate)
	r.Get("/defaults/grid-point", s.GetGridPointDefaults)
	r.Get("/modules", s.ListModules)
	r.Get("/events", s.SubscribeEvents)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// countRequests labels requests by route pattern, not raw path, so spec
// names do not blow up the series count.
func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		if s.Metrics != nil {
			s.Metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(code)).Inc()
		}
		s.Logger.Debug("http request", "method", r.Method, "route", route, "code", code, "duration", time.Since(start))
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>netspec API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "netspec-http",
		"version":     strings.TrimSpace(netspec.Version),
		"api_version": apiVersion,
	})
}

// ListSpecs handles the GET /specs request.
func (s *Server) ListSpecs(w http.ResponseWriter, r *http.Request) {
	names, err := s.Catalog.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"specs": names})
}

// GetSpec handles the GET /specs/{name} request.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	format, err := responseFormat(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	name, err := pathName(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	ms, err := s.Catalog.Get(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMessage(w, r, format, ms)
}

// PutSpec handles the PUT /specs/{name} request.
func (s *Server) PutSpec(w http.ResponseWriter, r *http.Request) {
	name, err := pathName(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	ms := &spec.MasterSpec{}
	if !s.decodeBody(w, r, ms) {
		return
	}
	if err := s.Catalog.Put(r.Context(), name, ms); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "name": name})
}

// DeleteSpec handles the DELETE /specs/{name} request.
func (s *Server) DeleteSpec(w http.ResponseWriter, r *http.Request) {
	name, err := pathName(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Catalog.Delete(r.Context(), name); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSpecGraph handles the GET /specs/{name}/graph request.
func (s *Server) GetSpecGraph(w http.ResponseWriter, r *http.Request) {
	name, err := pathName(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	chart, err := s.Catalog.Graph(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, chart)
}

// Validate handles the POST /validate request. An invalid record is a
// successful response with valid=false.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	kind, err := queryParam(r, "kind")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	msg, err := spec.NewMessage(kind)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	if !s.decodeBody(w, r, msg) {
		return
	}
	writeJSON(w, http.StatusOK, s.Catalog.Validate(msg))
}

// GetGridPointDefaults handles the GET /defaults/grid-point request.
func (s *Server) GetGridPointDefaults(w http.ResponseWriter, r *http.Request) {
	format, err := responseFormat(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	s.writeMessage(w, r, format, spec.DefaultGridPoint())
}

// ListModules handles the GET /modules request.
func (s *Server) ListModules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.Modules())
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	name, err := queryParam(r, "name")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := s.Catalog.Watch(r.Context(), name)
	s.Logger.Info("SSE: client subscribed", "spec", name)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	if err := rc.Flush(); err != nil {
		s.Logger.Error("SubscribeEvents: streaming not supported", "err", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE: client disconnected", "spec", name)
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				s.Logger.Error("SSE: encode event", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			rc.Flush()
		}
	}
}

// -- Helpers --

// pathName binds the {name} path segment.
func pathName(r *http.Request) (string, error) {
	var name string
	err := runtime.BindStyledParameterWithOptions("simple", "name", chi.URLParam(r, "name"), &name,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return "", fmt.Errorf("invalid path parameter name: %w", err)
	}
	return name, nil
}

// queryParam binds an optional form-style query parameter. A missing
// parameter is the empty string.
func queryParam(r *http.Request, param string) (string, error) {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, param, r.URL.Query(), &v); err != nil {
		return "", fmt.Errorf("invalid query parameter %s: %w", param, err)
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

// formatParam reads ?format=. ok is false when the parameter is absent.
func formatParam(r *http.Request) (f codec.Format, ok bool, err error) {
	v, err := queryParam(r, "format")
	if err != nil || v == "" {
		return "", false, err
	}
	f, err = codec.ParseFormat(v)
	return f, true, err
}

// acceptRange is one media range of an Accept header.
type acceptRange struct {
	format codec.Format
	q      float64
}

// responseFormat picks the encoding from ?format=, then the Accept header by
// quality value. JSON is the default.
func responseFormat(r *http.Request) (codec.Format, error) {
	if f, ok, err := formatParam(r); ok || err != nil {
		return f, err
	}
	var ranges []acceptRange
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		f, params, ok := parseMediaType(part)
		if !ok {
			continue
		}
		q := 1.0
		if v, has := params["q"]; has {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil || parsed < 0 || parsed > 1 {
				continue
			}
			q = parsed
		}
		if q == 0 {
			continue
		}
		ranges = append(ranges, acceptRange{format: f, q: q})
	}
	if len(ranges) == 0 {
		return codec.JSON, nil
	}
	slices.SortStableFunc(ranges, func(a, b acceptRange) int {
		switch {
		case a.q > b.q:
			return -1
		case a.q < b.q:
			return 1
		}
		return 0
	})
	return ranges[0].format, nil
}

// requestFormat picks the encoding from ?format=, then Content-Type.
func requestFormat(r *http.Request) (codec.Format, error) {
	if f, ok, err := formatParam(r); ok || err != nil {
		return f, err
	}
	if f, ok := formatFromMediaType(r.Header.Get("Content-Type")); ok {
		return f, nil
	}
	return codec.JSON, nil
}

func formatFromMediaType(v string) (codec.Format, bool) {
	f, _, ok := parseMediaType(v)
	return f, ok
}

func parseMediaType(v string) (codec.Format, map[string]string, bool) {
	mt, params, err := mime.ParseMediaType(strings.TrimSpace(v))
	if err != nil {
		return "", nil, false
	}
	switch mt {
	case "application/json":
		return codec.JSON, params, true
	case "application/yaml", "application/x-yaml", "text/yaml":
		return codec.YAML, params, true
	case "application/x-protobuf", "application/protobuf", "application/octet-stream":
		return codec.Binary, params, true
	}
	return "", nil, false
}

// decodeBody reads the request body into m and writes the error response
// itself when that fails.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, m spec.Message) bool {
	format, err := requestFormat(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return false
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.MaxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, err)
			return false
		}
		writeJSONError(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return false
	}
	if err := codec.Unmarshal(format, data, m); err != nil {
		s.Logger.Warn("invalid request body", "err", err, "format", format)
		writeJSONError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func (s *Server) writeMessage(w http.ResponseWriter, r *http.Request, format codec.Format, m spec.Message) {
	data, err := codec.Marshal(format, m)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Write(data)
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ports.ErrSpecNotFound):
		writeJSONError(w, http.StatusNotFound, err)
	case errors.Is(err, ports.ErrInvalidName):
		writeJSONError(w, http.StatusBadRequest, err)
	case errors.Is(err, ports.ErrReadOnly):
		writeJSONError(w, http.StatusMethodNotAllowed, err)
	case errors.Is(err, validator.ErrInvalid):
		var ve *validator.Error
		errors.As(err, &ve)
		writeJSON(w, http.StatusUnprocessableEntity, &netspec.Report{
			Kind:   ve.Subject,
			Valid:  false,
			Issues: ve.Issues,
		})
	default:
		s.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSONError(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
