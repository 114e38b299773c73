package web

import (
	"bytes"
	"html/template"
	"log/slog"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(&codeBlockRenderer{}, 200),
		),
	),
)

// renderNoteHTML renders note content as markdown. On render failure the
// content is shown as escaped plain text instead.
func renderNoteHTML(content string) template.HTML {
	var b strings.Builder
	if err := mdRenderer.Convert([]byte(content), &b); err != nil {
		slog.Warn("render note markdown", "err", err)
		return template.HTML("<p>" + template.HTMLEscapeString(content) + "</p>")
	}
	return template.HTML(b.String())
}

// codeBlockRenderer replaces goldmark's fenced code block output with
// chroma-highlighted markup.
type codeBlockRenderer struct{}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.render)
}

func (r *codeBlockRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	block := node.(*ast.FencedCodeBlock)
	lang := string(block.Language(source))

	var code bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	if err := highlight(w, code.String(), lang); err != nil {
		_, _ = w.WriteString("<pre><code>")
		_, _ = w.WriteString(template.HTMLEscapeString(code.String()))
		_, _ = w.WriteString("</code></pre>\n")
	}
	return ast.WalkSkipChildren, nil
}

func highlight(w util.BufWriter, code, lang string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return err
	}
	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}
	formatter := chromahtml.New(chromahtml.WithClasses(false))
	return formatter.Format(w, style, iterator)
}
