// Package mergetags wires the catalog, codec and controller to one document
// and exposes the entry points an editor host calls.
package mergetags

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/net/html"

	"github.com/walteh/mergetags/pkg/catalog"
	"github.com/walteh/mergetags/pkg/chip"
	"github.com/walteh/mergetags/pkg/codec"
	"github.com/walteh/mergetags/pkg/delimiter"
	"github.com/walteh/mergetags/pkg/document"
	"github.com/walteh/mergetags/pkg/interaction"
	"github.com/walteh/mergetags/pkg/options"
)

// Engine is not safe for concurrent use.
type Engine struct {
	id string

	opts       *options.Options
	catalog    *catalog.Catalog
	format     *delimiter.Format
	renderer   *chip.Renderer
	codec      *codec.Codec
	doc        *document.Document
	controller *interaction.Controller

	initialized bool
}

// New builds an engine over doc, or over an empty document when doc is nil,
// and loads the tags configured in opts.
func New(ctx context.Context, opts *options.Options, doc *document.Document) (*Engine, error) {
	if opts == nil {
		opts = options.Default()
	}
	if doc == nil {
		d, err := document.New("", opts.HistoryLimit)
		if err != nil {
			return nil, errors.Errorf("creating document: %w", err)
		}
		doc = d
	}

	cat := catalog.New()
	format := delimiter.New(opts)
	renderer := chip.New(opts)

	e := &Engine{
		id:         uuid.NewString(),
		opts:       opts,
		catalog:    cat,
		format:     format,
		renderer:   renderer,
		codec:      codec.New(opts, format, renderer, cat),
		doc:        doc,
		controller: interaction.New(opts, renderer, cat, format, doc),
	}

	e.RefreshTokensFromOptions(ctx)

	return e, nil
}

func (e *Engine) ID() string                          { return e.id }
func (e *Engine) Options() *options.Options           { return e.opts }
func (e *Engine) Catalog() *catalog.Catalog           { return e.catalog }
func (e *Engine) Codec() *codec.Codec                 { return e.codec }
func (e *Engine) Document() *document.Document        { return e.doc }
func (e *Engine) Controller() *interaction.Controller { return e.controller }

func (e *Engine) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("engine", e.id).Logger()
	return &l
}

// RefreshTokensFromOptions rebuilds the catalog from the configured tag list.
func (e *Engine) RefreshTokensFromOptions(ctx context.Context) {
	e.catalog.SetTokens(e.opts.Tags)
	e.logger(ctx).Debug().Int("tags", e.catalog.Len()).Msg("catalog refreshed from options")
}

// SetTokens replaces the catalog and re-runs the document through both codec
// directions so chips follow the new catalog, then migrates what is left.
func (e *Engine) SetTokens(ctx context.Context, raw any) error {
	e.catalog.SetTokens(raw)

	encoded := e.codec.ChipsToDelimited(e.doc.HTML())
	decoded := e.codec.DelimitedToChips(encoded)

	migrated := 0
	err := e.doc.Transact(func() error {
		if err := e.doc.SetHTML(decoded); err != nil {
			return err
		}
		migrated = e.codec.Migrate(e.doc.Body())
		return nil
	})
	if err != nil {
		return errors.Errorf("retokenizing document: %w", err)
	}

	e.logger(ctx).Debug().
		Int("tags", e.catalog.Len()).
		Int("migrated", migrated).
		Msg("tokens set")

	return nil
}

// GetContent is the document with every chip turned back into delimited text.
func (e *Engine) GetContent(ctx context.Context) string {
	return e.codec.ChipsToDelimited(e.doc.HTML())
}

// SetContent decodes fragment and replaces the document as one undoable edit.
func (e *Engine) SetContent(ctx context.Context, fragment string) error {
	decoded := e.codec.DelimitedToChips(fragment)
	err := e.doc.Transact(func() error {
		if err := e.doc.SetHTML(decoded); err != nil {
			return err
		}
		e.codec.Migrate(e.doc.Body())
		return nil
	})
	if err != nil {
		return errors.Errorf("setting content: %w", err)
	}
	return nil
}

// PastePreProcess decodes pasted markup before it reaches the document.
func (e *Engine) PastePreProcess(ctx context.Context, fragment string) string {
	return e.codec.DelimitedToChips(fragment)
}

// InsertByValue inserts the tag for value at the selection. Unknown values
// are ignored.
func (e *Engine) InsertByValue(ctx context.Context, value any) (bool, error) {
	ok, err := e.controller.InsertByValue(value)
	if err != nil {
		return false, err
	}
	if !ok {
		e.logger(ctx).Debug().Str("value", fmt.Sprint(value)).Msg("insert ignored, unknown value")
	}
	return ok, nil
}

func (e *Engine) MenuItems() []catalog.MenuItem {
	return e.catalog.MenuItems()
}

// Autocomplete returns suggestions for pattern, capped by maxResults and by
// the configured max_suggestions.
func (e *Engine) Autocomplete(ctx context.Context, pattern string, maxResults int, fuzzy bool) []catalog.Suggestion {
	limit := maxResults
	if limit <= 0 {
		limit = catalog.DefaultSearchLimit
	}
	if ceiling := e.opts.MaxSuggestions; ceiling > 0 && limit > ceiling {
		limit = ceiling
	}
	if fuzzy {
		return e.catalog.FuzzySearch(pattern, limit)
	}
	return e.catalog.Search(pattern, limit)
}

func (e *Engine) OnClick(ctx context.Context, ev *interaction.ClickEvent) {
	e.controller.OnClick(ev)
}

func (e *Engine) OnKeyDown(ctx context.Context, ev *interaction.KeyEvent) bool {
	removed := e.controller.OnKeyDown(ev)
	if removed {
		e.logger(ctx).Debug().Msg("chip removed by key press")
	}
	return removed
}

// OnNodeChange moves the caret out of a chip the selection landed in.
func (e *Engine) OnNodeChange(ctx context.Context, n *html.Node) {
	e.controller.OnNodeChange(n)
}

// TransformInitialContentOnce decodes and migrates the loaded document the
// first time it succeeds and does nothing afterwards. The pass is not
// recorded as an undo step.
func (e *Engine) TransformInitialContentOnce(ctx context.Context) (bool, error) {
	if e.initialized {
		return false, nil
	}

	migrated := 0
	err := e.doc.Apply(func() error {
		current := e.doc.HTML()
		if decoded := e.codec.DelimitedToChips(current); decoded != current {
			if err := e.doc.SetHTML(decoded); err != nil {
				return err
			}
		}
		migrated = e.codec.Migrate(e.doc.Body())
		return nil
	})
	if err != nil {
		return false, errors.Errorf("transforming initial content: %w", err)
	}
	e.initialized = true

	e.logger(ctx).Debug().Int("migrated", migrated).Msg("initial content transformed")
	return true, nil
}

// ContentStyles are the css rules the editing surface needs for chips.
func (e *Engine) ContentStyles() []string {
	return []string{
		fmt.Sprintf(".%s .%s{color:#16a34a;font-weight:400;}", e.opts.TokenClass, e.opts.BraceClass),
		fmt.Sprintf(".%s.%s{outline:3px solid rgba(0,125,126,.75);}", e.opts.TokenClass, e.opts.ActiveClass),
	}
}

// ValidElements is the schema rule that keeps chip attributes through
// sanitizing.
func (e *Engine) ValidElements() string {
	return fmt.Sprintf("span[%s|%s|%s|%s]", chip.AttrClass, chip.AttrEditable, chip.AttrValue, chip.AttrUID)
}
