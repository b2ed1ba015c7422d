// Package server implements a language server for monty programs.
package server

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/monty/pkg/bytecode"
	"github.com/chazu/monty/pkg/collection"
	"github.com/chazu/monty/pkg/parser"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "monty-lsp"

var log = commonlog.GetLogger("monty.lsp")

// LspServer provides diagnostics, completion and hover for monty files.
type LspServer struct {
	mode collection.Mode

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server. Programs are checked starting in mode.
func NewLSP(mode collection.Mode) *LspServer {
	s := &LspServer{
		mode:    mode,
		docs:    make(map[string]string),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Infof("%s initializing (mode %s)", lspName, s.mode)

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	log.Info("shutting down")
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.setDocument(uri, text)
	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.setDocument(uri, whole.Text)
			s.publishDiagnostics(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *LspServer) setDocument(uri protocol.DocumentUri, text string) {
	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()
}

func (s *LspServer) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	prefix := extractPrefix(text, params.Position)
	return Complete(prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	return Hover(word), nil
}

// Complete returns opcode mnemonics starting with prefix. An empty
// prefix lists every opcode.
func Complete(prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	for _, op := range bytecode.AllOpcodes() {
		info := bytecode.GetOpcodeInfo(op)
		if !strings.HasPrefix(info.Name, prefix) {
			continue
		}
		kind := protocol.CompletionItemKindKeyword
		detail := info.Doc
		name := info.Name
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &name,
		})
	}
	slices.SortFunc(items, func(a, b protocol.CompletionItem) int {
		return strings.Compare(a.Label, b.Label)
	})
	return items
}

// Hover describes the opcode named word, or returns nil.
func Hover(word string) *protocol.Hover {
	op, ok := bytecode.Lookup(word)
	if !ok {
		return nil
	}
	info := bytecode.GetOpcodeInfo(op)

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**", info.Name)
	if info.HasOperand {
		b.WriteString(" `<integer>`")
	}
	b.WriteString("\n\n")
	b.WriteString(info.Doc)
	switch info.MinLen {
	case 0:
	case 1:
		b.WriteString("\n\nRequires a non-empty stack.")
	default:
		fmt.Fprintf(&b, "\n\nRequires at least %d elements.", info.MinLen)
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

// --- Diagnostics ---

// Diagnose executes text with output discarded. The first fault is an
// error; later lines that would fault regardless of collection state
// (unknown opcodes, bad push operands) are warnings.
func Diagnose(text string, mode collection.Mode) []protocol.Diagnostic {
	lines := strings.Split(text, "\n")
	records := parser.ParseString(text)

	vm := bytecode.NewVM(io.Discard, bytecode.WithMode(mode))
	defer vm.Close()

	diagnostics := []protocol.Diagnostic{}
	faultLine := 0
	for _, rec := range records {
		in := bytecode.Assemble(rec)
		if faultLine == 0 {
			err := vm.Exec(in)
			if err == nil {
				continue
			}
			f, ok := bytecode.AsFault(err)
			if !ok {
				log.Warningf("diagnose: %s", err)
				break
			}
			faultLine = f.Line
			diagnostics = append(diagnostics, diagnostic(lines, f.Line, protocol.DiagnosticSeverityError, f.Message))
			continue
		}

		switch {
		case in.Op == bytecode.OpUnknown:
			diagnostics = append(diagnostics, diagnostic(lines, in.Line, protocol.DiagnosticSeverityWarning,
				"unknown instruction "+in.Name))
		case in.BadOperand:
			diagnostics = append(diagnostics, diagnostic(lines, in.Line, protocol.DiagnosticSeverityWarning,
				"usage: push integer"))
		}
	}
	return diagnostics
}

func diagnostic(lines []string, line int, severity protocol.DiagnosticSeverity, msg string) protocol.Diagnostic {
	end := 0
	if line-1 < len(lines) {
		end = len(strings.TrimRight(lines[line-1], "\r"))
	}
	source := lspName
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(line - 1), Character: 0},
			End:   protocol.Position{Line: protocol.UInteger(line - 1), Character: protocol.UInteger(end)},
		},
		Severity: &severity,
		Source:   &source,
		Message:  msg,
	}
}

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := Diagnose(text, s.mode)
	log.Debugf("%s: %d diagnostics", uri, len(diagnostics))

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// --- Text extraction helpers ---

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Walk backwards from cursor to find the start of the mnemonic
	start := col
	for start > 0 && isWordChar(rune(line[start-1])) {
		start--
	}

	return line[start:col]
}

// extractWord returns the full mnemonic under the cursor.
func extractWord(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	start := col
	for start > 0 && isWordChar(rune(line[start-1])) {
		start--
	}
	end := col
	for end < len(line) && isWordChar(rune(line[end])) {
		end++
	}

	return line[start:end]
}

func isWordChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

func boolPtr(b bool) *bool {
	return &b
}
