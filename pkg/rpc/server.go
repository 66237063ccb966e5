// Package rpc exposes a merge tag engine to an editor host over JSON-RPC.
package rpc

import (
	"context"
	"io"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/mergetags/pkg/document"
	"github.com/walteh/mergetags/pkg/interaction"
	"github.com/walteh/mergetags/pkg/mergetags"
)

const (
	MethodSetTokens       = "mergetags/setTokens"
	MethodInsert          = "mergetags/insert"
	MethodGetContent      = "mergetags/getContent"
	MethodSetContent      = "mergetags/setContent"
	MethodPastePreProcess = "mergetags/pastePreProcess"
	MethodClick           = "mergetags/click"
	MethodKeyDown         = "mergetags/keyDown"
	MethodNodeChange      = "mergetags/nodeChange"
	MethodSelect          = "mergetags/select"
	MethodMenu            = "mergetags/menu"
	MethodAutocomplete    = "mergetags/autocomplete"
	MethodInit            = "mergetags/init"
	MethodUndo            = "mergetags/undo"
	MethodRedo            = "mergetags/redo"
)

// Server routes requests to one engine. Requests are handled one at a time.
type Server struct {
	engine *mergetags.Engine
}

func NewServer(engine *mergetags.Engine) *Server {
	return &Server{engine: engine}
}

func (s *Server) methods() handler.Map {
	return handler.Map{
		MethodSetTokens:       createHandler(s.setTokens),
		MethodInsert:          createHandler(s.insert),
		MethodGetContent:      createEmptyParamsHandler(s.getContent),
		MethodSetContent:      createHandler(s.setContent),
		MethodPastePreProcess: createHandler(s.pastePreProcess),
		MethodClick:           createHandler(s.click),
		MethodKeyDown:         createHandler(s.keyDown),
		MethodNodeChange:      createHandler(s.nodeChange),
		MethodSelect:          createHandler(s.selectRange),
		MethodMenu:            createEmptyParamsHandler(s.menu),
		MethodAutocomplete:    createHandler(s.autocomplete),
		MethodInit:            createEmptyParamsHandler(s.init),
		MethodUndo:            createEmptyParamsHandler(s.undo),
		MethodRedo:            createEmptyParamsHandler(s.redo),
	}
}

// Instance builds the jrpc2 server. opts may be nil; Concurrency is always
// forced to 1 and handler contexts derive from ctx.
func (s *Server) Instance(ctx context.Context, opts *jrpc2.ServerOptions) *jrpc2.Server {
	if opts == nil {
		opts = &jrpc2.ServerOptions{}
	}
	opts.Concurrency = 1
	if opts.RPCLog == nil {
		opts.RPCLog = &RPCLogger{}
	}
	opts.NewContext = func() context.Context {
		return ctx
	}
	return jrpc2.NewServer(s.methods(), opts)
}

// Serve speaks line-delimited JSON-RPC over r and w until the stream closes.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.WriteCloser) error {
	zerolog.Ctx(ctx).Debug().Str("engine", s.engine.ID()).Msg("serving json-rpc")

	err := s.Instance(ctx, nil).Start(channel.Line(r, w)).Wait()
	if err != nil && !channel.IsErrClosing(err) && !errors.Is(err, io.EOF) {
		return errors.Errorf("serving json-rpc: %w", err)
	}
	return nil
}

func (s *Server) html() string {
	return s.engine.Document().HTML()
}

func (s *Server) resolve(path []int) (*document.Position, error) {
	n, ok := s.engine.Document().Resolve(path)
	if !ok {
		return nil, &jrpc2.Error{Code: -32602, Message: "path does not resolve to a node"}
	}
	return &document.Position{Node: n}, nil
}

func (s *Server) setTokens(ctx context.Context, params *SetTokensParams) (*SetTokensResult, error) {
	if err := s.engine.SetTokens(ctx, params.Tokens); err != nil {
		return nil, err
	}
	return &SetTokensResult{Tags: s.engine.Catalog().Len()}, nil
}

func (s *Server) insert(ctx context.Context, params *InsertParams) (*InsertResult, error) {
	ok, err := s.engine.InsertByValue(ctx, insertValue(params.Value))
	if err != nil {
		return nil, err
	}
	return &InsertResult{Inserted: ok}, nil
}

// insertValue accepts either a bare value or a {"value": ...} object.
func insertValue(v any) any {
	if m, ok := v.(map[string]any); ok {
		return m["value"]
	}
	return v
}

func (s *Server) getContent(ctx context.Context) (*ContentResult, error) {
	return &ContentResult{Content: s.engine.GetContent(ctx), HTML: s.html()}, nil
}

func (s *Server) setContent(ctx context.Context, params *ContentParams) (*ContentResult, error) {
	if err := s.engine.SetContent(ctx, params.Content); err != nil {
		return nil, err
	}
	return &ContentResult{Content: s.engine.GetContent(ctx), HTML: s.html()}, nil
}

func (s *Server) pastePreProcess(ctx context.Context, params *ContentParams) (*ContentResult, error) {
	return &ContentResult{Content: s.engine.PastePreProcess(ctx, params.Content)}, nil
}

func (s *Server) click(ctx context.Context, params *TargetParams) (*ClickResult, error) {
	target, err := s.resolve(params.Target)
	if err != nil {
		return nil, err
	}
	ev := &interaction.ClickEvent{Target: target.Node}
	s.engine.OnClick(ctx, ev)
	return &ClickResult{Prevented: ev.DefaultPrevented(), HTML: s.html()}, nil
}

func (s *Server) keyDown(ctx context.Context, params *KeyDownParams) (*KeyDownResult, error) {
	ev := &interaction.KeyEvent{Key: params.Key}
	s.engine.OnKeyDown(ctx, ev)
	return &KeyDownResult{Prevented: ev.DefaultPrevented(), HTML: s.html()}, nil
}

func (s *Server) nodeChange(ctx context.Context, params *TargetParams) (*Point, error) {
	target, err := s.resolve(params.Target)
	if err != nil {
		return nil, err
	}
	s.engine.OnNodeChange(ctx, target.Node)
	return s.caret(), nil
}

func (s *Server) caret() *Point {
	doc := s.engine.Document()
	start := doc.Caret().Start
	path, _ := doc.Path(start.Node)
	return &Point{Path: path, Offset: start.Offset}
}

func (s *Server) selectRange(ctx context.Context, params *SelectParams) (*Point, error) {
	start, err := s.resolve(params.Start.Path)
	if err != nil {
		return nil, err
	}
	start.Offset = params.Start.Offset

	end := start
	if params.End != nil {
		if end, err = s.resolve(params.End.Path); err != nil {
			return nil, err
		}
		end.Offset = params.End.Offset
	}

	s.engine.Document().Select(document.Range{Start: *start, End: *end})
	return s.caret(), nil
}

func (s *Server) menu(ctx context.Context) (*MenuResult, error) {
	return &MenuResult{Items: s.engine.MenuItems()}, nil
}

func (s *Server) autocomplete(ctx context.Context, params *AutocompleteParams) (*AutocompleteResult, error) {
	return &AutocompleteResult{
		Suggestions: s.engine.Autocomplete(ctx, params.Pattern, params.Max, params.Fuzzy),
	}, nil
}

func (s *Server) init(ctx context.Context) (*InitResult, error) {
	ran, err := s.engine.TransformInitialContentOnce(ctx)
	if err != nil {
		return nil, err
	}
	return &InitResult{
		Transformed:   ran,
		HTML:          s.html(),
		ContentStyles: s.engine.ContentStyles(),
		ValidElements: s.engine.ValidElements(),
	}, nil
}

func (s *Server) undo(ctx context.Context) (*HistoryResult, error) {
	return &HistoryResult{Applied: s.engine.Document().Undo(), HTML: s.html()}, nil
}

func (s *Server) redo(ctx context.Context) (*HistoryResult, error) {
	return &HistoryResult{Applied: s.engine.Document().Redo(), HTML: s.html()}, nil
}
