// Package servicetest runs an in-process stand-in for the calculation
// service, for tests of the client, the coordinator and the commands.
package servicetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// Failure is a canned non-success response.
type Failure struct {
	Status int
	Body   string
}

// Recorded is one request the fake received.
type Recorded struct {
	Method string
	Path   string
	Body   map[string]any
}

// Service is a fake calculation service listening on a local port.
type Service struct {
	*httptest.Server

	mu       sync.Mutex
	pdf      bool
	designs  map[string]string
	failures map[string]Failure
	files    map[string][]byte
	requests []Recorded
}

// New starts a fake whose design endpoints answer with realistic trees.
func New() *Service {
	s := &Service{
		pdf:      true,
		designs:  defaultDesigns(),
		failures: make(map[string]Failure),
		files:    make(map[string][]byte),
	}

	r := mux.NewRouter()
	r.Use(s.record, s.fail)
	r.HandleFunc("/", s.root).Methods(http.MethodGet)
	r.HandleFunc("/api/design/{kind}", s.design).Methods(http.MethodPost)
	r.HandleFunc("/api/reports/generate_pdf", s.generatePDF).Methods(http.MethodPost)
	r.HandleFunc("/api/drawings/generate", s.drawings).Methods(http.MethodPost)
	r.PathPrefix("/reports/").HandlerFunc(s.report).Methods(http.MethodGet)

	s.Server = httptest.NewServer(r)
	return s
}

// SetPDF toggles the capability flag reported by GET /.
func (s *Service) SetPDF(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pdf = ok
}

// SetDesign replaces the JSON returned for a design kind.
func (s *Service) SetDesign(kind, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.designs[kind] = body
}

// Fail makes every request to p answer with f until Recover is called.
func (s *Service) Fail(p string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[p] = f
}

// Recover removes a failure set with Fail.
func (s *Service) Recover(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, p)
}

// PutFile serves data under /reports/<name>.
func (s *Service) PutFile(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = data
}

// Requests returns what the fake received so far.
func (s *Service) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// RequestsTo filters Requests by path.
func (s *Service) RequestsTo(p string) []Recorded {
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Path == p {
			out = append(out, r)
		}
	}
	return out
}

func (s *Service) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := Recorded{Method: r.Method, Path: r.URL.Path}
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			r.Body.Close()
			if len(raw) > 0 {
				_ = json.Unmarshal(raw, &rec.Body)
			}
			r.Body = io.NopCloser(strings.NewReader(string(raw)))
		}
		s.mu.Lock()
		s.requests = append(s.requests, rec)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Service) fail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.URL.Path]
		s.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		w.WriteHeader(f.Status)
		io.WriteString(w, f.Body)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Service) root(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	pdf := s.pdf
	s.mu.Unlock()
	writeJSON(w, map[string]any{"status": "ok", "service": "Civil AI Backend", "weasyprint": pdf})
}

func (s *Service) design(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	s.mu.Lock()
	body, ok := s.designs[kind]
	s.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]string{"detail": "Not Found"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}

func (s *Service) generatePDF(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ReportPath string `json:"report_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.ReportPath == "" {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]string{"detail": "report_path required (e.g. /reports/beam_report_xxx.html)"})
		return
	}
	name := strings.TrimSuffix(path.Base(in.ReportPath), path.Ext(in.ReportPath)) + ".pdf"
	s.PutFile(name, []byte("%PDF-1.4 fake "+name))
	writeJSON(w, map[string]string{"pdf_path": "/reports/" + name})
}

func (s *Service) drawings(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Kind   string         `json:"kind"`
		Params map[string]any `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		writeJSON(w, map[string]any{"detail": []map[string]any{{"loc": []string{"body"}, "msg": err.Error()}}})
		return
	}
	base := "/reports/drawings/" + in.Kind
	writeJSON(w, map[string]any{
		"kind":   in.Kind,
		"params": in.Params,
		"files": map[string]any{
			"svg_plan": base + "_plan.svg",
			"svg_elev": base + "_elev.svg",
			"dxf":      base + ".dxf",
		},
	})
}

func (s *Service) report(w http.ResponseWriter, r *http.Request) {
	name := path.Base(r.URL.Path)
	s.mu.Lock()
	data, ok := s.files[name]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Write(data)
}

func defaultDesigns() map[string]string {
	reports := func(prefix string) string {
		return fmt.Sprintf(`"report_paths": {"txt": "/reports/%[1]s.txt", "html": "/reports/%[1]s.html"}`, prefix)
	}
	return map[string]string{
		"beam": `{"beam": {"factored_load_kN_per_m": 30.4, "factored_Mu_kNm": 60.8, "effective_depth_mm": 302,
			"required_As_mm2": 612.4, "bar_dia_mm": 16, "n_bars": 4, "provided_As_mm2": 804.2, "utilization_percent": 76.1},
			"shear": {"Vu_kN": 60.8, "Vc_kN": 82.4, "phiVc_kN": 61.8, "needs_shear_reinf": false},
			` + reports("beam_report") + `}`,
		"slab": `{"inputs": {"span_m": 3}, "results": {"Mu_kNm_per_m": 9.1, "As_req_mm2_per_m": 240, "bar_spacing_mm": 200,
			"serviceability": {"ok": true, "estimated_mm": 4.2, "allowable_mm": 12}}, ` + reports("slab_report") + `}`,
		"column": `{"inputs": {"Pu_kN": 1000}, "results": {"Ag_mm2": 90000, "As_req_mm2": 900, "As_provided_mm2": 1206.4,
			"bar_dia_mm": 16, "n_bars": 6, "phiPn_kN": 1480.2, "utilization_percent": 67.6, "short_column": true,
			"notes": {"phi_used": 0.65}}}`,
		"footing": `{"inputs": {"Pu_kN": 800}, "results": {"side_m": 2.31, "pad_depth_mm": 500, "As_req_mm2": 3465,
			"bar_dia_mm": 16, "spacing_mm": 150, "n_bars_total": 32, "provided_As_mm2": 6434,
			"punching": {"results": {"punching_safe": true, "utilization_percent": 54.2}},
			"serviceability": {"results": {"ok": true}}, ` + reports("footing_report") + `}}`,
		"combined_footing": `{"inputs": {}, "results": {"mode": "single_legacy", "total_load_kN": 800, "required_area_m2": 5.33,
			"pad_side_m": 2.31, "drawing_params": {"assumed_side_m": 2.31, "pad_depth_mm": 500},
			"engine_results": {"side_m": 2.31, "n_bars_total": 32, ` + reports("combined_report") + `}}}`,
	}
}
