package lsp

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/zephyrtronium/calcscript"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

type server struct {
	opts []calcscript.RuntimeOption

	mu      sync.Mutex
	content map[lsp.DocumentURI]string
}

func newServer(opts []calcscript.RuntimeOption) *server {
	return &server{opts: opts, content: make(map[lsp.DocumentURI]string)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":              s.initialize,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/didClose":   s.didClose,
		"textDocument/hover":      s.hover,
		"textDocument/completion": s.completion,

		"initialized": noop,
		// Sent by clients even when the server doesn't advertise support.
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

func (s *server) document(uri lsp.DocumentURI) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content[uri]
}

func (s *server) setDocument(uri lsp.DocumentURI, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[uri] = content
}

// Handler implementations. These are all called synchronously, so
// diagnostics are published in the order of the changes that caused them.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			HoverProvider:      true,
			CompletionProvider: &lsp.CompletionOptions{},
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	uri, content := params.TextDocument.URI, params.TextDocument.Text
	s.setDocument(uri, content)
	publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}
	// Only full sync is advertised, so the last change is the whole text.
	uri, content := params.TextDocument.URI, params.ContentChanges[len(params.ContentChanges)-1].Text
	s.setDocument(uri, content)
	publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didClose(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.mu.Lock()
	delete(s.content, params.TextDocument.URI)
	s.mu.Unlock()
	conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: params.TextDocument.URI, Diagnostics: []lsp.Diagnostic{}})
	return nil, nil
}

func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	content := s.document(params.TextDocument.URI)
	idx := lspPositionToIdx(content, params.Position)
	a, _ := calcscript.Parse(content)
	for i, st := range a.Sentences {
		if idx < st.Span.Start || idx > st.Span.End || st.Kind == calcscript.SentenceSeparator {
			continue
		}
		rg := lspRangeFromSpan(content, st.Span)
		return lsp.Hover{
			Contents: []lsp.MarkedString{{Language: "calcscript", Value: s.valueAt(a, i)}},
			Range:    &rg,
		}, nil
	}
	return lsp.Hover{}, nil
}

// valueAt evaluates the first i+1 sentences of a in a new Runtime and
// describes the value of the last one. Assignments show the assigned value.
func (s *server) valueAt(a *calcscript.Article, i int) string {
	rt := calcscript.NewRuntime(s.opts...)
	upto := &calcscript.Article{Sentences: a.Sentences[:i+1]}
	r := upto.Eval(rt)
	st := a.Sentences[i]
	if st.Kind == calcscript.SentenceAssign {
		return st.Name + " = " + rt.Get(st.Name).String()
	}
	return calcscript.Reduce(r.Vars[i]).String()
}

func (s *server) completion(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	content := s.document(params.TextDocument.URI)
	dot := lspPositionToIdx(content, params.Position)
	start := dot
	for start > 0 && isIdentByte(content[start-1]) {
		start--
	}
	prefix := content[start:dot]
	replace := lsp.Range{
		Start: lspPositionFromIdx(content, start),
		End:   lspPositionFromIdx(content, dot),
	}

	a, _ := calcscript.Parse(content)
	sys := calcscript.NewRuntime(s.opts...).System()
	items := []lsp.CompletionItem{}
	seen := map[string]bool{}
	add := func(names []string, kind lsp.CompletionItemKind) {
		for _, name := range names {
			if seen[name] || !strings.HasPrefix(name, prefix) {
				continue
			}
			seen[name] = true
			items = append(items, lsp.CompletionItem{
				Label: name,
				Kind:  kind,
				TextEdit: &lsp.TextEdit{
					Range:   replace,
					NewText: name,
				},
			})
		}
	}
	add(assignedNames(a.Sentences), lsp.CIKVariable)
	add(sys.Constants(), lsp.CIKConstant)
	add(calcscript.Functions(), lsp.CIKFunction)
	return items, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// assignedNames lists the names assigned anywhere in ss, sorted.
func assignedNames(ss []calcscript.Sentence) []string {
	var names []string
	var walk func([]calcscript.Sentence)
	walk = func(ss []calcscript.Sentence) {
		for _, s := range ss {
			switch s.Kind {
			case calcscript.SentenceAssign:
				names = append(names, s.Name)
			case calcscript.SentenceBlock:
				walk(s.Block)
			}
		}
	}
	walk(ss)
	sort.Strings(names)
	return names
}

func publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: diagnostics(content)})
}

func diagnostics(content string) []lsp.Diagnostic {
	_, errs := calcscript.Parse(content)
	diags := make([]lsp.Diagnostic, len(errs))
	for i, err := range errs {
		sev := lsp.Error
		if _, ok := err.(*calcscript.UnparsedError); ok {
			sev = lsp.Warning
		}
		diags[i] = lsp.Diagnostic{
			Range:    lspRangeFromSpan(content, err.Range()),
			Severity: sev,
			Source:   "calcscript",
			Message:  err.Error(),
		}
	}
	return diags
}

func lspRangeFromSpan(s string, sp calcscript.Span) lsp.Range {
	return lsp.Range{
		Start: lspPositionFromIdx(s, sp.Start),
		End:   lspPositionFromIdx(s, sp.End),
	}
}

func lspPositionToIdx(s string, pos lsp.Position) int {
	var idx int
	walkString(s, func(i int, p lsp.Position) bool {
		idx = i
		return p.Line < pos.Line || (p.Line == pos.Line && p.Character < pos.Character)
	})
	return idx
}

func lspPositionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// walkString generates (index, position) pairs in s, stopping if f returns
// false. Characters count UTF-16 code units.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			// \n in \r\n is already counted.
			if !lastCR {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			p.Character++
		default:
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}
