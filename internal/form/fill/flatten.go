package fill

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// overlayFontSize is the point size used when burning values into page
// content.
const overlayFontSize = 9

// flattenForm burns the current field values into the page content
// streams and removes the interactive layer. The output renders the
// same everywhere and nothing in it can be edited.
func flattenForm(ctx *model.Context, mark string) error {
	pages, err := collectPages(ctx)
	if err != nil {
		return err
	}

	var fontRef *types.IndirectRef
	for _, pageDict := range pages {
		ops := buildPageOverlay(ctx, pageDict, mark)
		if ops != "" {
			if fontRef == nil {
				fontRef, err = helveticaRef(ctx)
				if err != nil {
					return fmt.Errorf("registering overlay font: %w", err)
				}
			}
			if err := appendPageContent(ctx, pageDict, ops); err != nil {
				return fmt.Errorf("appending overlay content: %w", err)
			}
			ensureFontResource(ctx, pageDict, fontRef)
		}
		stripWidgets(ctx, pageDict)
	}

	removeAcroForm(ctx)
	return nil
}

// collectPages walks the page tree and returns page dictionaries in
// document order.
func collectPages(ctx *model.Context) ([]types.Dict, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("reading document catalog: %w", err)
	}
	pagesObj, found := rootDict.Find("Pages")
	if !found {
		return nil, errors.New("document has no page tree")
	}

	var pages []types.Dict
	var walk func(obj types.Object, depth int)
	walk = func(obj types.Object, depth int) {
		if depth > 32 {
			return
		}
		dict, err := ctx.DereferenceDict(obj)
		if err != nil || dict == nil {
			return
		}
		switch dictName(ctx, dict, "Type") {
		case "Pages":
			kidsObj, found := dict.Find("Kids")
			if !found {
				return
			}
			kidsArr, err := ctx.DereferenceArray(kidsObj)
			if err != nil {
				return
			}
			for _, kid := range kidsArr {
				walk(kid, depth+1)
			}
		case "Page":
			pages = append(pages, dict)
		}
	}
	walk(pagesObj, 0)
	return pages, nil
}

// buildPageOverlay emits text operations for every widget on the page
// that carries a value: field text at the widget rectangle for text and
// choice fields, the mark token for checked buttons.
func buildPageOverlay(ctx *model.Context, pageDict types.Dict, mark string) string {
	annotsObj, found := pageDict.Find("Annots")
	if !found {
		return ""
	}
	annotsArr, err := ctx.DereferenceArray(annotsObj)
	if err != nil {
		return ""
	}

	var b strings.Builder
	for _, obj := range annotsArr {
		annot, err := ctx.DereferenceDict(obj)
		if err != nil || annot == nil {
			continue
		}
		if dictName(ctx, annot, "Subtype") != "Widget" {
			continue
		}
		r, ok := widgetRect(ctx, annot)
		if !ok {
			continue
		}
		ft, value, as := widgetFieldState(ctx, annot)
		switch ft {
		case ftButton:
			checked := (as != "" && as != "Off") || (as == "" && value != "" && value != "Off")
			if checked {
				drawTextOp(&b, r, mark)
			}
		case ftText, ftChoice:
			if value != "" {
				drawTextOp(&b, r, value)
			}
		}
	}
	return b.String()
}

// widgetFieldState resolves the widget's field type and value through
// the Parent chain; merged widgets carry both on the annotation itself.
func widgetFieldState(ctx *model.Context, annot types.Dict) (ft, value, as string) {
	as = dictName(ctx, annot, "AS")

	chain := make([]types.Dict, 0, 4)
	dict := annot
	for depth := 0; dict != nil && depth < 10; depth++ {
		chain = append(chain, dict)
		parentObj, found := dict.Find("Parent")
		if !found {
			break
		}
		parent, err := ctx.DereferenceDict(parentObj)
		if err != nil {
			break
		}
		dict = parent
	}

	for _, d := range chain {
		if ft = dictName(ctx, d, "FT"); ft != "" {
			break
		}
	}
	for _, d := range chain {
		if _, found := d.Find("V"); !found {
			continue
		}
		if ft == ftButton {
			value = dictName(ctx, d, "V")
		} else {
			value = dictString(ctx, d, "V")
		}
		break
	}
	return ft, value, as
}

type widgetBox struct {
	llx, lly, w, h float64
}

func widgetRect(ctx *model.Context, annot types.Dict) (widgetBox, bool) {
	obj, found := annot.Find("Rect")
	if !found {
		return widgetBox{}, false
	}
	arr, err := ctx.DereferenceArray(obj)
	if err != nil || len(arr) != 4 {
		return widgetBox{}, false
	}
	var coords [4]float64
	for i, o := range arr {
		n, err := ctx.DereferenceNumber(o)
		if err != nil {
			return widgetBox{}, false
		}
		coords[i] = n
	}
	return widgetBox{
		llx: math.Min(coords[0], coords[2]),
		lly: math.Min(coords[1], coords[3]),
		w:   math.Abs(coords[2] - coords[0]),
		h:   math.Abs(coords[3] - coords[1]),
	}, true
}

func drawTextOp(b *strings.Builder, box widgetBox, text string) {
	x := box.llx + 2
	y := box.lly + (box.h-overlayFontSize)/2 + 1
	if y < box.lly {
		y = box.lly
	}
	fmt.Fprintf(b, "q\nBT\n/Helv %d Tf\n%.2f %.2f Td\n(%s) Tj\nET\nQ\n",
		overlayFontSize, x, y, escapeTextLiteral(text))
}

// escapeTextLiteral makes a string safe inside a parenthesized content
// stream literal. The overlay font uses WinAnsi, so anything outside
// Latin-1 degrades to a question mark.
func escapeTextLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '(':
			b.WriteString(`\(`)
		case r == ')':
			b.WriteString(`\)`)
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case r < 0x20 || r > 0xFF:
			b.WriteByte('?')
		default:
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// appendPageContent registers the overlay as a new content stream and
// appends it after the existing page content.
func appendPageContent(ctx *model.Context, pageDict types.Dict, ops string) error {
	sd, err := ctx.NewStreamDictForBuf([]byte(ops))
	if err != nil {
		return err
	}
	if err := sd.Encode(); err != nil {
		return err
	}
	ref, err := ctx.IndRefForNewObject(*sd)
	if err != nil {
		return err
	}

	contentsObj, found := pageDict.Find("Contents")
	if !found {
		pageDict.Update("Contents", *ref)
		return nil
	}
	switch obj := contentsObj.(type) {
	case types.Array:
		pageDict.Update("Contents", append(obj, *ref))
	default:
		pageDict.Update("Contents", types.Array{obj, *ref})
	}
	return nil
}

func helveticaRef(ctx *model.Context) (*types.IndirectRef, error) {
	fontDict := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Helvetica"),
		"Encoding": types.Name("WinAnsiEncoding"),
	}
	return ctx.IndRefForNewObject(fontDict)
}

// ensureFontResource makes /Helv reachable from the page. A page
// without its own Resources gets a copy of the inherited one so the
// original content keeps rendering.
func ensureFontResource(ctx *model.Context, pageDict types.Dict, font *types.IndirectRef) {
	var res types.Dict
	if obj, found := pageDict.Find("Resources"); found {
		res, _ = ctx.DereferenceDict(obj)
	}
	if res == nil {
		res = types.Dict{}
		if inherited := inheritedResources(ctx, pageDict); inherited != nil {
			for k, v := range inherited {
				res[k] = v
			}
		}
		pageDict.Update("Resources", res)
	}

	var fonts types.Dict
	if obj, found := res.Find("Font"); found {
		fonts, _ = ctx.DereferenceDict(obj)
	}
	if fonts == nil {
		fonts = types.Dict{}
		res.Update("Font", fonts)
	}
	if _, found := fonts.Find("Helv"); !found {
		fonts.Update("Helv", *font)
	}
}

func inheritedResources(ctx *model.Context, pageDict types.Dict) types.Dict {
	dict := pageDict
	for depth := 0; depth < 10; depth++ {
		parentObj, found := dict.Find("Parent")
		if !found {
			return nil
		}
		parent, err := ctx.DereferenceDict(parentObj)
		if err != nil || parent == nil {
			return nil
		}
		if resObj, found := parent.Find("Resources"); found {
			if res, err := ctx.DereferenceDict(resObj); err == nil {
				return res
			}
		}
		dict = parent
	}
	return nil
}

// stripWidgets drops widget annotations from the page, keeping every
// other annotation type.
func stripWidgets(ctx *model.Context, pageDict types.Dict) {
	annotsObj, found := pageDict.Find("Annots")
	if !found {
		return
	}
	annotsArr, err := ctx.DereferenceArray(annotsObj)
	if err != nil {
		delete(pageDict, "Annots")
		return
	}

	var kept types.Array
	for _, obj := range annotsArr {
		annot, err := ctx.DereferenceDict(obj)
		if err != nil || annot == nil {
			continue
		}
		if dictName(ctx, annot, "Subtype") == "Widget" {
			continue
		}
		kept = append(kept, obj)
	}
	if len(kept) == 0 {
		delete(pageDict, "Annots")
		return
	}
	pageDict.Update("Annots", kept)
}

func removeAcroForm(ctx *model.Context) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return
	}
	delete(rootDict, "AcroForm")
}
