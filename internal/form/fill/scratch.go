package fill

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/visaflow/mcp-i765-filler/internal/form/mapper"
)

// blankBase is a one page Letter document with a Helvetica resource,
// used as the skeleton for generated documents.
//
//go:embed scratch_base.pdf
var blankBase []byte

// Layout for generated documents: US Letter with one inch margins.
const (
	scratchPageHeight = 792
	scratchMargin     = 72
	scratchLeading    = 16
	scratchFontSize   = 10
	scratchTitleSize  = 14
	scratchLineChars  = 90
)

// CreateFromScratch builds a paginated document listing every resolved
// field as an "item label: value" line. This is the fallback when no
// official template is available; the output is a data summary, not the
// form itself.
func (p *Processor) CreateFromScratch(title string, fields []mapper.ResolvedField) ([]byte, error) {
	if strings.TrimSpace(title) == "" {
		title = "Form I-765 Application Data"
	}

	ctx, err := readDocument(blankBase)
	if err != nil {
		return nil, WrapError(ErrorKindEncode, "parsing blank document", err)
	}
	pages, err := collectPages(ctx)
	if err != nil {
		return nil, WrapError(ErrorKindEncode, "reading blank document pages", err)
	}
	if len(pages) == 0 {
		return nil, NewError(ErrorKindEncode, "blank document has no pages")
	}
	basePage := pages[0]

	usable := scratchPageHeight - 2*scratchMargin
	firstCap := (usable - scratchTitleSize - 2*scratchLeading) / scratchLeading
	restCap := usable / scratchLeading

	chunks := paginateLines(scratchLines(fields), firstCap, restCap)
	if len(chunks) == 0 {
		chunks = [][]string{nil}
	}

	var newPages []types.IndirectRef
	for i, chunk := range chunks {
		pageTitle := ""
		if i == 0 {
			pageTitle = title
		}
		ref, err := newContentStream(ctx, scratchPageOps(pageTitle, chunk))
		if err != nil {
			return nil, WrapError(ErrorKindEncode, "building page content", err)
		}
		if i == 0 {
			basePage.Update("Contents", *ref)
			continue
		}
		pageRef, err := clonePage(ctx, basePage, *ref)
		if err != nil {
			return nil, WrapError(ErrorKindEncode, "adding page", err)
		}
		newPages = append(newPages, *pageRef)
	}

	if len(newPages) > 0 {
		if err := appendPages(ctx, newPages); err != nil {
			return nil, WrapError(ErrorKindEncode, "extending page tree", err)
		}
	}

	out, err := writeDocument(ctx)
	if err != nil {
		return nil, WrapError(ErrorKindEncode, "serializing document", err)
	}

	p.logger.Info("scratch document created", map[string]interface{}{
		"pages":  len(chunks),
		"fields": len(fields),
	})
	return out, nil
}

// scratchLines renders the resolved fields as wrapped display lines,
// prefixed with the form item number when the descriptor has one.
func scratchLines(fields []mapper.ResolvedField) []string {
	var lines []string
	for _, rf := range fields {
		label := rf.Field.Label
		if label == "" {
			label = rf.Field.FieldID
		}
		if rf.Field.ItemNumber != "" {
			label = rf.Field.ItemNumber + " " + label
		}
		lines = append(lines, wrapLine(label+": "+rf.Value, scratchLineChars)...)
	}
	return lines
}

// wrapLine word-wraps a line to the given rune budget; oversized words
// are hard-broken.
func wrapLine(s string, limit int) []string {
	runes := []rune(s)
	if len(runes) <= limit {
		return []string{s}
	}

	var lines []string
	var current []rune
	for _, word := range strings.Fields(s) {
		w := []rune(word)
		for len(w) > limit {
			if len(current) > 0 {
				lines = append(lines, string(current))
				current = nil
			}
			lines = append(lines, string(w[:limit]))
			w = w[limit:]
		}
		switch {
		case len(current) == 0:
			current = w
		case len(current)+1+len(w) <= limit:
			current = append(append(current, ' '), w...)
		default:
			lines = append(lines, string(current))
			current = w
		}
	}
	if len(current) > 0 {
		lines = append(lines, string(current))
	}
	return lines
}

func paginateLines(lines []string, firstCap, restCap int) [][]string {
	if firstCap < 1 {
		firstCap = 1
	}
	if restCap < 1 {
		restCap = 1
	}

	var chunks [][]string
	pageCap := firstCap
	for len(lines) > 0 {
		n := pageCap
		if n > len(lines) {
			n = len(lines)
		}
		chunks = append(chunks, lines[:n])
		lines = lines[n:]
		pageCap = restCap
	}
	return chunks
}

// scratchPageOps emits the content stream for one page: optional title,
// then one text line per entry.
func scratchPageOps(title string, lines []string) string {
	var b strings.Builder
	b.WriteString("q\n")

	y := scratchPageHeight - scratchMargin
	if title != "" {
		y -= scratchTitleSize
		fmt.Fprintf(&b, "BT\n/Helv %d Tf\n%d %d Td\n(%s) Tj\nET\n",
			scratchTitleSize, scratchMargin, y, escapeTextLiteral(title))
		y -= 2 * scratchLeading
	}
	for _, line := range lines {
		y -= scratchLeading
		fmt.Fprintf(&b, "BT\n/Helv %d Tf\n%d %d Td\n(%s) Tj\nET\n",
			scratchFontSize, scratchMargin, y, escapeTextLiteral(line))
	}

	b.WriteString("Q\n")
	return b.String()
}

func newContentStream(ctx *model.Context, ops string) (*types.IndirectRef, error) {
	sd, err := ctx.NewStreamDictForBuf([]byte(ops))
	if err != nil {
		return nil, err
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return ctx.IndRefForNewObject(*sd)
}

// clonePage creates a new page sharing the base page's parent, media
// box, and resources, with its own content stream.
func clonePage(ctx *model.Context, basePage types.Dict, contents types.IndirectRef) (*types.IndirectRef, error) {
	page := types.Dict{"Type": types.Name("Page")}
	for _, key := range []string{"Parent", "MediaBox", "Resources"} {
		if obj, found := basePage.Find(key); found {
			page.Update(key, obj)
		}
	}
	page.Update("Contents", contents)
	return ctx.IndRefForNewObject(page)
}

func appendPages(ctx *model.Context, refs []types.IndirectRef) error {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return err
	}
	pagesObj, found := rootDict.Find("Pages")
	if !found {
		return fmt.Errorf("document has no page tree")
	}
	pagesDict, err := ctx.DereferenceDict(pagesObj)
	if err != nil {
		return err
	}
	kidsObj, found := pagesDict.Find("Kids")
	if !found {
		return fmt.Errorf("page tree has no kids array")
	}
	kidsArr, err := ctx.DereferenceArray(kidsObj)
	if err != nil {
		return err
	}

	for _, ref := range refs {
		kidsArr = append(kidsArr, ref)
	}
	pagesDict.Update("Kids", kidsArr)
	pagesDict.Update("Count", types.Integer(len(kidsArr)))
	return nil
}
