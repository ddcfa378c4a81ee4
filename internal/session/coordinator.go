// Package session tracks the three asynchronous operations a user can start
// against the calculation service and the state they leave behind.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/alexiusacademia/civcalc/internal/drawing"
	"github.com/alexiusacademia/civcalc/internal/form"
	"github.com/alexiusacademia/civcalc/internal/service"
	"github.com/alexiusacademia/civcalc/internal/tree"
)

// Class identifies an operation class. Each has its own busy flag.
type Class int

const (
	ClassSubmit Class = iota
	ClassPDF
	ClassDrawings
)

func (c Class) String() string {
	switch c {
	case ClassSubmit:
		return "submit"
	case ClassPDF:
		return "pdf"
	case ClassDrawings:
		return "drawings"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

var (
	ErrNoReport  = errors.New("no report available")
	ErrNoPDFPath = errors.New("no pdf_path in response")
)

// Service is the part of the calculation service the coordinator drives.
// *service.Client implements it.
type Service interface {
	Design(ctx context.Context, c form.Category, p form.Payload) (tree.Value, error)
	GeneratePDF(ctx context.Context, reportPath string) (tree.Value, error)
	GenerateDrawings(ctx context.Context, req drawing.Request) (tree.Value, error)
	Fetch(ctx context.Context, link string) ([]byte, error)
	Link(path string) (string, bool)
}

var _ Service = (*service.Client)(nil)

// DrawingFiles maps an asset kind (plan, elevation, dxf) to an absolute link.
type DrawingFiles map[string]string

// DefaultAssetAliases lists the key spellings recognised in a drawing
// response's "files" mapping.
func DefaultAssetAliases() tree.Aliases {
	return tree.Aliases{
		"plan":      {"plan", "svg_plan"},
		"elevation": {"elevation", "svg_elev"},
		"dxf":       {"dxf"},
		"pdf":       {"pdf"},
	}
}

// Status is a copy of the coordinator state.
type Status struct {
	Busy      map[Class]bool
	Err       string
	Result    tree.Value
	HasResult bool
	Category  form.Category
	Drawings  DrawingFiles
	Download  *Download
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger used for operation lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAssetAliases extends the default drawing asset aliases.
func WithAssetAliases(a tree.Aliases) Option {
	return func(c *Coordinator) {
		c.assets = c.assets.Merge(a)
	}
}

// Coordinator owns the busy flags, the shared error slot, the result slot,
// the drawing file set and the last download.
type Coordinator struct {
	svc    Service
	saver  Saver
	logger *zap.Logger
	assets tree.Aliases

	mu        sync.Mutex
	busy      map[Class]bool
	err       string
	result    tree.Value
	hasResult bool
	category  form.Category
	drawings  DrawingFiles
	download  *Download
}

// NewCoordinator builds a coordinator in the idle state.
func NewCoordinator(svc Service, saver Saver, opts ...Option) *Coordinator {
	c := &Coordinator{
		svc:    svc,
		saver:  saver,
		logger: zap.NewNop(),
		assets: DefaultAssetAliases(),
		busy:   make(map[Class]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		Busy:      make(map[Class]bool, len(c.busy)),
		Err:       c.err,
		Result:    c.result,
		HasResult: c.hasResult,
		Category:  c.category,
	}
	for k, v := range c.busy {
		st.Busy[k] = v
	}
	if c.drawings != nil {
		st.Drawings = make(DrawingFiles, len(c.drawings))
		for k, v := range c.drawings {
			st.Drawings[k] = v
		}
	}
	if c.download != nil {
		d := *c.download
		st.Download = &d
	}
	return st
}

// Busy reports whether an operation of class is in flight.
func (c *Coordinator) Busy(class Class) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy[class]
}

// Result returns the last design result, if any.
func (c *Coordinator) Result() (tree.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.hasResult
}

// begin marks class as running and clears the shared error. Starting a
// submission also drops the previous result, drawings and download.
func (c *Coordinator) begin(class Class) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.busy[class] = true
	c.err = ""
	if class == ClassSubmit {
		c.result = tree.Null()
		c.hasResult = false
		c.category = ""
		c.drawings = nil
		c.download = nil
	}
	c.logger.Debug("operation started", zap.Stringer("class", class))
}

// finish records err, if any, and clears the busy flag. Callers defer it
// right after begin so no exit path leaves the flag set.
func (c *Coordinator) finish(class Class, err *error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.busy[class] = false
	if *err != nil {
		c.err = (*err).Error()
		c.logger.Debug("operation failed", zap.Stringer("class", class), zap.Error(*err))
		return
	}
	c.logger.Debug("operation finished", zap.Stringer("class", class))
}

// Submit normalizes state and sends it to the design endpoint of category.
func (c *Coordinator) Submit(ctx context.Context, category form.Category, state form.State) (result tree.Value, err error) {
	c.begin(ClassSubmit)
	defer c.finish(ClassSubmit, &err)

	result, err = c.svc.Design(ctx, category, form.DesignPayload(category, state))
	if err != nil {
		return tree.Null(), err
	}

	c.mu.Lock()
	c.result = result
	c.hasResult = true
	c.category = category
	c.drawings = nil
	c.err = ""
	c.mu.Unlock()
	return result, nil
}

// ExportPDF converts the HTML report of the current result to PDF, downloads
// it and hands it to the saver.
func (c *Coordinator) ExportPDF(ctx context.Context) (dl Download, err error) {
	c.begin(ClassPDF)
	defer c.finish(ClassPDF, &err)

	result, ok := c.Result()
	if !ok {
		return Download{}, ErrNoReport
	}
	reportPath, ok := htmlReport(tree.FindReportLocations(result))
	if !ok {
		return Download{}, ErrNoReport
	}

	resp, err := c.svc.GeneratePDF(ctx, reportPath)
	if err != nil {
		return Download{}, err
	}
	pdfPath, _ := tree.FindField(resp, "pdf_path").AsString()
	if pdfPath == "" {
		return Download{}, ErrNoPDFPath
	}

	data, err := c.svc.Fetch(ctx, pdfPath)
	if err != nil {
		return Download{}, fmt.Errorf("failed to download PDF: %w", err)
	}

	name := service.FileName(pdfPath, "report.pdf")
	savedTo, err := c.saver.Save(name, data)
	if err != nil {
		return Download{}, fmt.Errorf("save %s: %w", name, err)
	}
	dl = Download{FileName: name, SavedTo: savedTo, Size: len(data)}
	if link, ok := c.svc.Link(pdfPath); ok {
		dl.Link = link
	}

	c.mu.Lock()
	c.download = &dl
	c.mu.Unlock()
	return dl, nil
}

// htmlReport picks the html entry of a report location mapping, falling back
// to the first non-empty string entry.
func htmlReport(locs tree.Value) (string, bool) {
	if !locs.IsObject() {
		return "", false
	}
	if s, ok := locs.Get("html").AsString(); ok && s != "" {
		return s, true
	}
	for _, m := range locs.Members() {
		if s, ok := m.Value.AsString(); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// GenerateDrawings derives drawing parameters from state and asks the service
// for drawing files.
func (c *Coordinator) GenerateDrawings(ctx context.Context, category form.Category, state form.State) (files DrawingFiles, err error) {
	c.begin(ClassDrawings)
	defer c.finish(ClassDrawings, &err)

	params, err := drawing.Derive(category, form.Normalize(state))
	if err != nil {
		return nil, err
	}
	resp, err := c.svc.GenerateDrawings(ctx, drawing.NewRequest(category, params))
	if err != nil {
		return nil, err
	}
	files = c.drawingFiles(tree.FindField(resp, "files"))

	c.mu.Lock()
	c.drawings = files
	c.mu.Unlock()
	return files, nil
}

// drawingFiles resolves every string entry of a files mapping. Keys listed in
// the asset aliases are stored under their canonical kind.
func (c *Coordinator) drawingFiles(v tree.Value) DrawingFiles {
	canonical := make(map[string]string)
	for kind, names := range c.assets {
		for _, n := range names {
			canonical[n] = kind
		}
	}

	files := make(DrawingFiles)
	for _, m := range v.Members() {
		path, ok := m.Value.AsString()
		if !ok || path == "" {
			continue
		}
		link, ok := c.svc.Link(path)
		if !ok {
			continue
		}
		kind := m.Key
		if k, ok := canonical[m.Key]; ok {
			kind = k
		}
		if _, seen := files[kind]; !seen {
			files[kind] = link
		}
	}
	return files
}
