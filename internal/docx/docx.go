// Package docx edits Word documents. It drives the shared ooxml.Session and
// applies the runs mutation engine to paragraph and table-cell text in
// word/document.xml.
package docx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/ooxml"
	"github.com/docsmith-dev/docsmith/internal/runs"
)

const (
	documentPart = "word/document.xml"

	tagP   = "p"
	tagTbl = "tbl"
	tagTr  = "tr"
	tagTc  = "tc"
	tagR   = "r"
	tagT   = "t"
)

// Open opens a .docx file.
func Open(path string) (*ooxml.Session, error) {
	return ooxml.Open(path)
}

// body locates w:body inside word/document.xml.
func body(session *ooxml.Session) (*etree.Element, error) {
	doc, err := session.Part(documentPart)
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	if root == nil {
		return nil, errfmt.New(errfmt.InvalidFormat, "document.xml has no root element")
	}

	for _, child := range root.ChildElements() {
		if child.Tag == "body" {
			return child, nil
		}
	}

	return nil, errfmt.New(errfmt.InvalidFormat, "document.xml has no w:body")
}

// paragraphs returns the top-level w:p elements of body in document order.
func paragraphs(body *etree.Element) []*etree.Element {
	var ps []*etree.Element

	for _, child := range body.ChildElements() {
		if child.Tag == tagP {
			ps = append(ps, child)
		}
	}

	return ps
}

// tables returns the top-level w:tbl elements of body in document order.
func tables(body *etree.Element) []*etree.Element {
	var ts []*etree.Element

	for _, child := range body.ChildElements() {
		if child.Tag == tagTbl {
			ts = append(ts, child)
		}
	}

	return ts
}

// blocks returns the interleaved top-level structural sequence (w:p and
// w:tbl) in document order. w:sectPr and bookkeeping elements are not
// structural blocks and are excluded.
func blocks(body *etree.Element) []*etree.Element {
	var bs []*etree.Element

	for _, child := range body.ChildElements() {
		if child.Tag == tagP || child.Tag == tagTbl {
			bs = append(bs, child)
		}
	}

	return bs
}

// paragraphText returns the concatenated w:t text of a paragraph.
func paragraphText(p *etree.Element) string {
	var sb strings.Builder

	for _, r := range p.ChildElements() {
		if r.Tag != tagR {
			continue
		}

		for _, t := range r.ChildElements() {
			if t.Tag == tagT {
				sb.WriteString(t.Text())
			}
		}
	}

	return sb.String()
}

// paragraphStyle extracts the style name from w:pPr/w:pStyle[@w:val].
func paragraphStyle(p *etree.Element) string {
	for _, child := range p.ChildElements() {
		if child.Tag != "pPr" {
			continue
		}

		for _, prop := range child.ChildElements() {
			if prop.Tag == "pStyle" {
				if val := selectAttr(prop, "val"); val != "" {
					return val
				}
			}
		}
	}

	return ""
}

// selectAttr reads an attribute by local name, with or without the w: prefix.
func selectAttr(e *etree.Element, name string) string {
	if a := e.SelectAttr(name); a != nil {
		return a.Value
	}

	if a := e.SelectAttr("w:" + name); a != nil {
		return a.Value
	}

	return ""
}

// blockFromParagraph converts a paragraph's runs into the engine's run model.
func blockFromParagraph(p *etree.Element) *runs.Block {
	block := &runs.Block{}

	for _, r := range p.ChildElements() {
		if r.Tag != tagR {
			continue
		}

		var text strings.Builder

		for _, t := range r.ChildElements() {
			if t.Tag == tagT {
				text.WriteString(t.Text())
			}
		}

		block.Runs = append(block.Runs, runs.Run{
			Text:   text.String(),
			Format: formatFromRun(r),
		})
	}

	return block
}

// formatFromRun reads w:rPr into a Format. Absent properties stay nil and
// inherit from the style chain.
func formatFromRun(r *etree.Element) runs.Format {
	var f runs.Format

	for _, child := range r.ChildElements() {
		if child.Tag != "rPr" {
			continue
		}

		for _, prop := range child.ChildElements() {
			switch prop.Tag {
			case "b":
				f.Bold = boolProp(prop)
			case "i":
				f.Italic = boolProp(prop)
			case "u":
				v := selectAttr(prop, "val") != "none"
				f.Underline = &v
			case "rFonts":
				if name := selectAttr(prop, "ascii"); name != "" {
					f.FontName = &name
				}
			case "sz":
				// w:sz is in half-points.
				if n, err := strconv.ParseFloat(selectAttr(prop, "val"), 64); err == nil {
					size := n / 2
					f.FontSize = &size
				}
			}
		}
	}

	return f
}

// boolProp interprets a toggle property element (w:b, w:i): present with no
// val or val!=false/0 means true.
func boolProp(prop *etree.Element) *bool {
	v := true

	switch selectAttr(prop, "val") {
	case "false", "0", "none":
		v = false
	}

	return &v
}

// applyBlock replaces a paragraph's runs with the block's runs. Non-run
// children (w:pPr and friends) are preserved in place.
func applyBlock(p *etree.Element, block *runs.Block) {
	var toRemove []*etree.Element

	for _, child := range p.ChildElements() {
		if child.Tag == tagR {
			toRemove = append(toRemove, child)
		}
	}

	for _, child := range toRemove {
		p.RemoveChild(child)
	}

	for _, run := range block.Runs {
		p.AddChild(buildRun(run))
	}
}

// buildRun creates a w:r element from a Run, emitting w:rPr only for
// explicitly set format fields.
func buildRun(run runs.Run) *etree.Element {
	r := etree.NewElement("w:r")

	if rPr := buildRunProps(run.Format); rPr != nil {
		r.AddChild(rPr)
	}

	t := r.CreateElement("w:t")
	t.SetText(run.Text)

	if needsSpacePreserve(run.Text) {
		t.CreateAttr("xml:space", "preserve")
	}

	return r
}

func buildRunProps(f runs.Format) *etree.Element {
	if f.Bold == nil && f.Italic == nil && f.Underline == nil && f.FontName == nil && f.FontSize == nil {
		return nil
	}

	rPr := etree.NewElement("w:rPr")

	if f.FontName != nil {
		fonts := rPr.CreateElement("w:rFonts")
		fonts.CreateAttr("w:ascii", *f.FontName)
		fonts.CreateAttr("w:hAnsi", *f.FontName)
	}

	if f.Bold != nil {
		b := rPr.CreateElement("w:b")
		if !*f.Bold {
			b.CreateAttr("w:val", "false")
		}
	}

	if f.Italic != nil {
		i := rPr.CreateElement("w:i")
		if !*f.Italic {
			i.CreateAttr("w:val", "false")
		}
	}

	if f.Underline != nil {
		u := rPr.CreateElement("w:u")
		if *f.Underline {
			u.CreateAttr("w:val", "single")
		} else {
			u.CreateAttr("w:val", "none")
		}
	}

	if f.FontSize != nil {
		sz := rPr.CreateElement("w:sz")
		sz.CreateAttr("w:val", strconv.Itoa(int(*f.FontSize*2)))
	}

	return rPr
}

func needsSpacePreserve(text string) bool {
	return len(text) > 0 && (text[0] == ' ' || text[len(text)-1] == ' ')
}

// buildParagraph creates a w:p element with a single unformatted run.
func buildParagraph(text string) *etree.Element {
	p := etree.NewElement("w:p")
	p.AddChild(buildRun(runs.Run{Text: text}))

	return p
}

// setParagraphStyle sets or replaces the paragraph style, creating w:pPr as
// the first child when absent.
func setParagraphStyle(p *etree.Element, styleName string) {
	var pPr *etree.Element

	for _, child := range p.ChildElements() {
		if child.Tag == "pPr" {
			pPr = child

			break
		}
	}

	if pPr == nil {
		pPr = etree.NewElement("w:pPr")
		if len(p.ChildElements()) == 0 {
			p.AddChild(pPr)
		} else {
			first := p.ChildElements()[0]
			p.InsertChildAt(first.Index(), pPr)
		}
	}

	var pStyle *etree.Element

	for _, child := range pPr.ChildElements() {
		if child.Tag == "pStyle" {
			pStyle = child

			break
		}
	}

	if pStyle == nil {
		pStyle = pPr.CreateElement("w:pStyle")
	}

	pStyle.RemoveAttr("val")
	pStyle.RemoveAttr("w:val")
	pStyle.CreateAttr("w:val", styleName)
}

// insertBefore splices newChild immediately before refChild within parent.
func insertBefore(parent, refChild, newChild *etree.Element) {
	parent.InsertChildAt(refChild.Index(), newChild)
}

// insertAfter splices newChild immediately after refChild within parent.
func insertAfter(parent, refChild, newChild *etree.Element) {
	children := parent.ChildElements()

	for i, child := range children {
		if child != refChild {
			continue
		}

		if i == len(children)-1 {
			parent.AddChild(newChild)
		} else {
			parent.InsertChildAt(children[i+1].Index(), newChild)
		}

		return
	}

	parent.AddChild(newChild)
}

// appendBlock appends a structural block at the end of body, before a
// trailing w:sectPr when one exists (sectPr must stay last).
func appendBlock(body, newChild *etree.Element) {
	children := body.ChildElements()

	if n := len(children); n > 0 && children[n-1].Tag == "sectPr" {
		body.InsertChildAt(children[n-1].Index(), newChild)

		return
	}

	body.AddChild(newChild)
}
