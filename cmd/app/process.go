package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pwnholic/plotbook/internal"
	"github.com/pwnholic/plotbook/internal/book"
	"github.com/pwnholic/plotbook/internal/clients"
	"github.com/pwnholic/plotbook/internal/config"
	"github.com/pwnholic/plotbook/internal/exports"
	"github.com/pwnholic/plotbook/internal/server"
)

type exportProcess struct {
	clients  *clients.RequestBuilder
	exporter *exports.DocumentExporter
	cfg      *config.FileConfig
	flag     *Flag
}

func NewExportProcess(cfg *config.FileConfig, flag *Flag) (*exportProcess, error) {
	opts := exports.Options{
		Compose:  cfg.Layout.ComposeOptions,
		FontPath: cfg.Layout.FontPath,
	}

	if cfg.Layout.CoverImagePath != "" {
		img, err := exports.LoadImage(cfg.Layout.CoverImagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load cover image: %w", err)
		}
		opts.Compose.CoverImage = &book.CoverImage{Data: img.Data, Width: img.Width, Height: img.Height}
	}

	return &exportProcess{
		clients:  clients.NewRequestBuilder(cfg.API, &cfg.HTTP),
		exporter: exports.NewDocumentExporter(opts),
		cfg:      cfg,
		flag:     flag,
	}, nil
}

func (ep *exportProcess) Close() {
	if err := ep.clients.Close(); err != nil {
		internal.Warn("Failed to close HTTP client: %v", err)
	}
}

func (ep *exportProcess) serve(ctx context.Context) error {
	srv := ep.cfg.Server
	handler := server.NewRouter(ep.clients, ep.exporter)
	return server.Serve(ctx, srv.Address, handler, srv.ReadTimeout, srv.WriteTimeout, srv.ShutdownTimeout)
}

type exportResult struct {
	path    string
	pages   int
	skipped bool
	stats   book.Stats
}

func (ep *exportProcess) processExport(ctx context.Context) error {
	if err := os.MkdirAll(ep.flag.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	refs := ep.flag.BookRefs
	switch {
	case ep.flag.Input != "":
		refs = []string{ep.flag.Input}
	case ep.flag.BookID != "":
		refs = []string{ep.flag.BookID}
	}
	return ep.processBatch(ctx, refs)
}

func (ep *exportProcess) processBatch(ctx context.Context, refs []string) error {
	startTime := time.Now()
	internal.Info("Exporting %d books with %d max workers", len(refs), ep.flag.MaxConcurrent)

	var (
		mu        sync.Mutex
		results   []*exportResult
		errs      []error
		fileCache sync.Map
		claimed   sync.Map
	)

	g := new(errgroup.Group)
	g.SetLimit(ep.flag.MaxConcurrent)

	for _, ref := range refs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := ep.exportOne(ctx, ref, &fileCache, &claimed)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				internal.Error("Failed to export %s: %v", ref, err)
				errs = append(errs, fmt.Errorf("error exporting %s: %w", ref, err))
				return nil
			}
			results = append(results, res)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	written, pages, words := 0, 0, 0
	for _, res := range results {
		if res.skipped {
			continue
		}
		written++
		pages += res.pages
		words += res.stats.TotalWords
	}
	internal.Info("[SUMMARY] Exported %d of %d books in %v", written, len(refs), time.Since(startTime))
	internal.Info("[SUMMARY] Rendered %d pages covering %d words", pages, words)

	if len(errs) > 0 {
		return fmt.Errorf("completed with %d errors: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// loadBook treats refs ending in .json as local documents and anything else
// as a book id on the generator API.
func (ep *exportProcess) loadBook(ctx context.Context, ref string) (*book.Book, error) {
	if strings.EqualFold(filepath.Ext(ref), ".json") {
		return book.Load(ref)
	}
	return ep.clients.FetchBook(ctx, ref)
}

// exportOne writes ref to its output file. claimed maps each output path to
// the first ref that targets it within a batch; later refs with the same
// file name are skipped.
func (ep *exportProcess) exportOne(ctx context.Context, ref string, fileCache, claimed *sync.Map) (*exportResult, error) {
	b, err := ep.loadBook(ctx, ref)
	if err != nil {
		return nil, err
	}

	outputFilename := filepath.Join(ep.flag.OutputDir, b.FileName())
	if owner, taken := claimed.LoadOrStore(outputFilename, ref); taken {
		internal.Warn("%s and %s both export to %s, skipping %s", owner, ref, outputFilename, ref)
		return &exportResult{path: outputFilename, skipped: true}, nil
	}
	if !ep.flag.Force && isFileExists(outputFilename, fileCache) {
		internal.Info("File already exists, skipping: %s", outputFilename)
		return &exportResult{path: outputFilename, skipped: true}, nil
	}

	artifact, err := ep.exporter.Export(b)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(outputFilename, artifact.Data, 0o644); err != nil {
		return nil, fmt.Errorf("error saving PDF: %w", err)
	}
	fileCache.Store(outputFilename, true)

	stats := b.Stats()
	internal.Success("Saved to %s (%d pages, %d chapters)", outputFilename, artifact.Pages, stats.ChapterCount)
	return &exportResult{path: outputFilename, pages: artifact.Pages, stats: stats}, nil
}

func isFileExists(filename string, cache *sync.Map) bool {
	if val, ok := cache.Load(filename); ok {
		return val.(bool)
	}
	_, err := os.Stat(filename)
	exists := err == nil
	cache.Store(filename, exists)
	return exists
}
