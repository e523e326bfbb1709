package engine

import (
	"github.com/nathoo/cmdext/engine/document"
	"github.com/nathoo/cmdext/engine/lexer"
	"github.com/nathoo/cmdext/engine/metadata"
	"github.com/nathoo/cmdext/engine/strategy"
	"github.com/nathoo/cmdext/types"
)

// ParseOptions controls a single parse.
type ParseOptions struct {
	// Known reports which names are interpreter commands rather than host
	// commands; it is consulted at parse time.
	Known    func(name string) bool
	Encoding lexer.Encoding
	Profile  string
}

// Parse decodes data and runs it through tokenizer, builder, metadata
// extraction and strategy evaluation. Any structural error aborts the whole
// file; nothing is returned for partial input.
func Parse(data []byte, opts ParseOptions) (types.ParseResult, error) {
	src, err := lexer.Decode(data, opts.Encoding)
	if err != nil {
		return types.ParseResult{}, err
	}
	return ParseString(src, opts)
}

// ParseString is Parse for already decoded text.
func ParseString(src string, opts ParseOptions) (types.ParseResult, error) {
	doc, err := document.Parse(src, document.Options{Known: opts.Known, Profile: opts.Profile})
	if err != nil {
		return types.ParseResult{}, err
	}
	ev := strategy.Evaluate(doc)
	return types.ParseResult{
		Format:   doc.Format,
		Commands: ev.Commands,
		Hotfixes: ev.Hotfixes,
		Metadata: metadata.Extract(doc),
		Warnings: ev.Warnings,
	}, nil
}
