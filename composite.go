// Package fidelity composites signer field values onto existing PDF
// documents. Every call appends a single incremental update, so the source
// bytes are always a prefix of the result.
//
// Basic usage:
//
//	fs, err := fields.Decode(r)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, report, err := fidelity.Composite(ctx, src, fs,
//	    fidelity.WithCompletedSigners("signer-1"),
//	)
//
// Fields that fail individually are recorded in the Report and never abort
// the document. Composite is not idempotent: running it twice with the same
// fields draws everything twice.
package fidelity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aamirmursleen/Auradoc-sub003/compose"
	"github.com/aamirmursleen/Auradoc-sub003/fields"
	"github.com/aamirmursleen/Auradoc-sub003/geometry"
	"github.com/aamirmursleen/Auradoc-sub003/images"
	"github.com/aamirmursleen/Auradoc-sub003/internal/logger"
	"github.com/aamirmursleen/Auradoc-sub003/internal/render"
)

// task is a field that survived planning and will be drawn.
type task struct {
	field    fields.Field
	imageURL string

	img    *images.Image
	imgErr error
}

// CompositeFields draws fs onto src with default options.
func CompositeFields(src []byte, fs []fields.Field) ([]byte, error) {
	out, _, err := Composite(context.Background(), src, fs)
	return out, err
}

// Composite draws fs onto src and returns the updated document together
// with one outcome per field. Only loading and serialization errors are
// returned; everything else is reported per field.
func Composite(ctx context.Context, src []byte, fs []fields.Field, opts ...Option) ([]byte, *Report, error) {
	o := newOptions(opts)
	start := time.Now()

	source, err := compose.Load(src, compose.LoadOptions{Repair: o.engine.Repair})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load document: %w", err)
	}
	if source.Decrypted {
		o.logger.Info("decrypted owner-password protected document")
	}
	if source.Repaired {
		o.logger.Warn("document was repaired before compositing")
	}

	doc, err := compose.NewContext(source.Data, source.Reader, o.engine.CompressLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}

	report := &Report{
		Outcomes:  make([]FieldOutcome, len(fs)),
		Decrypted: source.Decrypted,
		Repaired:  source.Repaired,
	}

	tasks := plan(fs, doc.NumPage(), o, report)
	decodeImages(ctx, tasks, o)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if err := drawPages(doc, fs, tasks, report, o.logger); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var out []byte
	if doc.Objects() == 0 {
		out = append([]byte(nil), source.Data...)
	} else if out, err = doc.Finish(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}

	o.logger.Debug("composited document",
		"fields", len(fs),
		"rendered", report.Count(StatusRendered),
		"placeholders", report.Count(StatusPlaceholder),
		"skipped", report.Count(StatusSkipped),
		"failed", report.Count(StatusFailed),
		"pages", report.PagesUpdated,
		logger.Timed(start),
	)
	return out, report, nil
}

// plan records an outcome for every field that will not be drawn and
// returns tasks for the rest, indexed like fs.
func plan(fs []fields.Field, numPages int, o *options, report *Report) []*task {
	tasks := make([]*task, len(fs))

	for i, f := range fs {
		h := f.Head()
		report.Outcomes[i] = FieldOutcome{FieldID: h.ID, Page: h.Page}

		switch {
		case !o.signerCompleted(h.SignerID):
			skip(report, i, "signer has not completed")
			continue

		case h.Page < 1 || h.Page > numPages:
			err := &FieldError{FieldID: h.ID, Page: h.Page, Err: ErrPageOutOfRange}
			skip(report, i, fmt.Sprintf("document has %d pages", numPages))
			report.Outcomes[i].Err = err
			o.logger.Warn("skipping field", "field", h.ID, "page", h.Page, "err", err)
			continue
		}

		url, hasImage := render.ImageValue(f, o.signatureImage)
		if f.Empty() && !hasImage {
			skip(report, i, "no value")
			continue
		}
		tasks[i] = &task{field: f, imageURL: url}
	}
	return tasks
}

func skip(report *Report, i int, reason string) {
	report.Outcomes[i].Status = StatusSkipped
	report.Outcomes[i].Reason = reason
}

// decodeImages decodes every task's image on a bounded pool of workers.
// Identical data URLs are decoded once.
func decodeImages(ctx context.Context, tasks []*task, o *options) {
	cache := images.NewCache(images.DecodeOptions{MaxDimension: o.engine.MaxImageDimension})
	sem := make(chan struct{}, o.engine.Workers)

	var wg sync.WaitGroup
	for _, t := range tasks {
		if t == nil || t.imageURL == "" {
			continue
		}

		wg.Add(1)
		go func(t *task) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					t.img, t.imgErr = nil, fmt.Errorf("%w: panic: %v", images.ErrUnsupportedImage, r)
				}
			}()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				t.imgErr = ctx.Err()
				return
			}
			defer func() { <-sem }()

			fctx, cancel := context.WithTimeout(ctx, o.engine.DecodeTimeout)
			defer cancel()
			t.img, t.imgErr = cache.Get(fctx, t.field.Head().ID, t.imageURL)
		}(t)
	}
	wg.Wait()
}

// drawPages draws the tasks page by page, in input order within a page.
// The returned error is fatal; per-field problems land in report.
func drawPages(doc *compose.Context, fs []fields.Field, tasks []*task, report *Report, log *slog.Logger) error {
	renderer := render.NewDocument(doc)
	pages, grouped := fields.ByPage(fs)

	for _, n := range pages {
		var page *render.Page
		var box geometry.PageBox

		for _, i := range grouped[n] {
			t := tasks[i]
			if t == nil {
				continue
			}
			if page == nil {
				var err error
				if box, err = doc.PageBox(n); err != nil {
					return err
				}
				page = renderer.Page(n)
			}

			status, err := drawField(page, box, t)
			outcome := &report.Outcomes[i]
			outcome.Status = status
			if status == StatusSkipped {
				outcome.Reason = "nothing to draw"
			}
			if err != nil {
				h := t.field.Head()
				outcome.Err = &FieldError{FieldID: h.ID, Page: h.Page, Err: err}
				log.Warn("field not rendered", "field", h.ID, "page", h.Page, "status", string(status), "err", err)
			}
		}

		if page == nil || page.Empty() {
			continue
		}
		if err := page.Apply(); err != nil {
			return err
		}
		report.PagesUpdated++
	}
	return nil
}

func drawField(page *render.Page, box geometry.PageBox, t *task) (status Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			status, err = StatusFailed, fmt.Errorf("panic while drawing: %v", r)
		}
	}()

	img := t.img
	if t.imgErr != nil {
		img = nil
	}

	rect := t.field.Head().Rect.ToPDF(box)
	elements, result := render.Field(t.field, rect, img)
	if err := page.Draw(elements...); err != nil {
		return StatusFailed, err
	}

	switch result {
	case render.Placeholder:
		return StatusPlaceholder, t.imgErr
	case render.Nothing:
		return StatusSkipped, nil
	}
	return StatusRendered, nil
}
