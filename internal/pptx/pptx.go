// Package pptx edits PowerPoint presentations. Slides are addressed 1-based
// (matching what presenters see); shapes are addressed by 0-based ordinal,
// name substring, or text substring, resolved fresh on every call because
// neither indices nor names are stable across independent edits.
package pptx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/ooxml"
	"github.com/docsmith-dev/docsmith/internal/runs"
)

const (
	presentationPart = "ppt/presentation.xml"
	presentationRels = "ppt/_rels/presentation.xml.rels"
)

// Kind is a shape's capability tag, fixed at enumeration time. Operations
// check it instead of probing the XML at call sites.
type Kind string

const (
	KindText  Kind = "text"  // shape owns a text frame
	KindImage Kind = "image" // picture
	KindGroup Kind = "group" // group of shapes
	KindOther Kind = "other" // graphic frame, connector, anything else
)

// Shape is one shape on a slide.
type Shape struct {
	elem *etree.Element

	Index       int    `json:"shape_index"`
	Kind        Kind   `json:"shape_type"`
	Name        string `json:"name"`
	Placeholder string `json:"placeholder,omitempty"`
	Text        string `json:"text,omitempty"`
	Left        int64  `json:"left"`
	Top         int64  `json:"top"`
	Width       int64  `json:"width"`
	Height      int64  `json:"height"`
}

// Open opens a .pptx file.
func Open(path string) (*ooxml.Session, error) {
	return ooxml.Open(path)
}

// slideParts returns slide part names in presentation order, resolved through
// ppt/presentation.xml's sldIdLst and the presentation relationships. Sorting
// part names alone would misorder slide10 before slide2.
func slideParts(session *ooxml.Session) ([]string, error) {
	rels, err := relTargets(session, presentationRels, "ppt")
	if err != nil {
		return nil, err
	}

	doc, err := session.Part(presentationPart)
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	if root == nil {
		return nil, errfmt.New(errfmt.InvalidFormat, "presentation.xml has no root element")
	}

	var parts []string

	for _, child := range root.ChildElements() {
		if child.Tag != "sldIdLst" {
			continue
		}

		for _, sldID := range child.ChildElements() {
			if sldID.Tag != "sldId" {
				continue
			}

			rid := attrByLocal(sldID, "id", "r")
			if target, ok := rels[rid]; ok {
				parts = append(parts, target)
			}
		}
	}

	return parts, nil
}

// relTargets parses a relationships part into id → resolved part path.
// baseDir anchors relative targets ("slides/slide1.xml" under "ppt").
func relTargets(session *ooxml.Session, relsPart, baseDir string) (map[string]string, error) {
	doc, err := session.Part(relsPart)
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	if root == nil {
		return nil, errfmt.New(errfmt.InvalidFormat, "%s has no root element", relsPart)
	}

	out := make(map[string]string)

	for _, rel := range root.ChildElements() {
		if rel.Tag != "Relationship" {
			continue
		}

		id := attrValue(rel, "Id")
		target := attrValue(rel, "Target")

		if id != "" && target != "" {
			out[id] = resolveTarget(baseDir, target)
		}
	}

	return out, nil
}

// relsByType returns the resolved targets of all relationships whose Type
// ends in suffix (e.g. "/image"), in rels file order.
func relsByType(session *ooxml.Session, relsPart, baseDir, suffix string) []string {
	doc, err := session.Part(relsPart)
	if err != nil {
		return nil
	}

	root := doc.Root()
	if root == nil {
		return nil
	}

	var out []string

	for _, rel := range root.ChildElements() {
		if rel.Tag != "Relationship" {
			continue
		}

		if strings.HasSuffix(attrValue(rel, "Type"), suffix) {
			if target := attrValue(rel, "Target"); target != "" {
				out = append(out, resolveTarget(baseDir, target))
			}
		}
	}

	return out
}

// resolveTarget joins a relationship target against its source part's
// directory, collapsing "../" segments.
func resolveTarget(baseDir, target string) string {
	parts := strings.Split(baseDir, "/")

	for _, seg := range strings.Split(target, "/") {
		switch seg {
		case "..":
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
		case ".", "":
		default:
			parts = append(parts, seg)
		}
	}

	return strings.Join(parts, "/")
}

func attrValue(e *etree.Element, name string) string {
	if a := e.SelectAttr(name); a != nil {
		return a.Value
	}

	return ""
}

// attrByLocal reads an attribute by local name, preferring the given
// namespace prefix ("r:id" over "id").
func attrByLocal(e *etree.Element, local, prefix string) string {
	if a := e.SelectAttr(prefix + ":" + local); a != nil {
		return a.Value
	}

	return attrValue(e, local)
}

// spTree locates the shape tree of a slide document.
func spTree(doc *etree.Document) *etree.Element {
	root := doc.Root()
	if root == nil {
		return nil
	}

	for _, cSld := range root.ChildElements() {
		if cSld.Tag != "cSld" {
			continue
		}

		for _, tree := range cSld.ChildElements() {
			if tree.Tag == "spTree" {
				return tree
			}
		}
	}

	return nil
}

// shapesOf enumerates a slide's shapes in z-order with capability tags.
func shapesOf(doc *etree.Document) []Shape {
	tree := spTree(doc)
	if tree == nil {
		return nil
	}

	var shapes []Shape

	idx := 0

	for _, child := range tree.ChildElements() {
		var kind Kind

		switch child.Tag {
		case "sp":
			kind = KindOther
			if textBody(child) != nil {
				kind = KindText
			}
		case "pic":
			kind = KindImage
		case "grpSp":
			kind = KindGroup
		case "graphicFrame", "cxnSp":
			kind = KindOther
		default:
			continue
		}

		s := Shape{
			elem:        child,
			Index:       idx,
			Kind:        kind,
			Name:        shapeName(child),
			Placeholder: placeholderType(child),
		}

		s.Left, s.Top, s.Width, s.Height = shapeFrame(child)

		if kind == KindText {
			s.Text = shapeText(child)
		}

		shapes = append(shapes, s)
		idx++
	}

	return shapes
}

// shapeName reads nv*Pr/cNvPr@name.
func shapeName(shape *etree.Element) string {
	for _, child := range shape.ChildElements() {
		if !strings.HasPrefix(child.Tag, "nv") || !strings.HasSuffix(child.Tag, "Pr") {
			continue
		}

		for _, nv := range child.ChildElements() {
			if nv.Tag == "cNvPr" {
				return attrValue(nv, "name")
			}
		}
	}

	return ""
}

// placeholderType reads nv*Pr/nvPr/ph@type ("title", "ctrTitle", "body", ...).
// An empty string means the shape is not a placeholder.
func placeholderType(shape *etree.Element) string {
	for _, child := range shape.ChildElements() {
		if !strings.HasPrefix(child.Tag, "nv") || !strings.HasSuffix(child.Tag, "Pr") {
			continue
		}

		for _, nv := range child.ChildElements() {
			if nv.Tag != "nvPr" {
				continue
			}

			for _, ph := range nv.ChildElements() {
				if ph.Tag == "ph" {
					if t := attrValue(ph, "type"); t != "" {
						return t
					}

					// A ph element with no type is a generic body placeholder.
					return "body"
				}
			}
		}
	}

	return ""
}

// shapeFrame reads spPr/xfrm offsets and extents in EMU.
func shapeFrame(shape *etree.Element) (left, top, width, height int64) {
	for _, spPr := range shape.ChildElements() {
		if spPr.Tag != "spPr" && spPr.Tag != "grpSpPr" {
			continue
		}

		for _, xfrm := range spPr.ChildElements() {
			if xfrm.Tag != "xfrm" {
				continue
			}

			for _, child := range xfrm.ChildElements() {
				switch child.Tag {
				case "off":
					left = parseEMU(attrValue(child, "x"))
					top = parseEMU(attrValue(child, "y"))
				case "ext":
					width = parseEMU(attrValue(child, "cx"))
					height = parseEMU(attrValue(child, "cy"))
				}
			}
		}
	}

	return left, top, width, height
}

func parseEMU(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}

	return n
}

// textBody returns the shape's txBody element, or nil.
func textBody(shape *etree.Element) *etree.Element {
	for _, child := range shape.ChildElements() {
		if child.Tag == "txBody" {
			return child
		}
	}

	return nil
}

// shapeText joins the text frame's paragraph texts with newlines.
func shapeText(shape *etree.Element) string {
	tb := textBody(shape)
	if tb == nil {
		return ""
	}

	var paras []string

	for _, p := range tb.ChildElements() {
		if p.Tag != "p" {
			continue
		}

		paras = append(paras, frameParagraphText(p))
	}

	return strings.Join(paras, "\n")
}

func frameParagraphText(p *etree.Element) string {
	var sb strings.Builder

	for _, r := range p.ChildElements() {
		if r.Tag != "r" {
			continue
		}

		for _, t := range r.ChildElements() {
			if t.Tag == "t" {
				sb.WriteString(t.Text())
			}
		}
	}

	return sb.String()
}

// blockFromFrameParagraph converts one a:p into the engine's run model.
func blockFromFrameParagraph(p *etree.Element) *runs.Block {
	block := &runs.Block{}

	for _, r := range p.ChildElements() {
		if r.Tag != "r" {
			continue
		}

		var text strings.Builder

		for _, t := range r.ChildElements() {
			if t.Tag == "t" {
				text.WriteString(t.Text())
			}
		}

		block.Runs = append(block.Runs, runs.Run{
			Text:   text.String(),
			Format: formatFromFrameRun(r),
		})
	}

	return block
}

// formatFromFrameRun reads a:rPr. DrawingML stores toggles as attributes
// (b="1", u="sng") and size in hundredths of a point.
func formatFromFrameRun(r *etree.Element) runs.Format {
	var f runs.Format

	for _, rPr := range r.ChildElements() {
		if rPr.Tag != "rPr" {
			continue
		}

		if v := attrValue(rPr, "b"); v != "" {
			b := v == "1" || v == "true"
			f.Bold = &b
		}

		if v := attrValue(rPr, "i"); v != "" {
			i := v == "1" || v == "true"
			f.Italic = &i
		}

		if v := attrValue(rPr, "u"); v != "" {
			u := v != "none"
			f.Underline = &u
		}

		if v := attrValue(rPr, "sz"); v != "" {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				size := n / 100
				f.FontSize = &size
			}
		}

		for _, latin := range rPr.ChildElements() {
			if latin.Tag == "latin" {
				if tf := attrValue(latin, "typeface"); tf != "" {
					f.FontName = &tf
				}
			}
		}
	}

	return f
}

// applyFrameBlock replaces one a:p's runs with the block's runs.
func applyFrameBlock(p *etree.Element, block *runs.Block) {
	var toRemove []*etree.Element

	for _, child := range p.ChildElements() {
		if child.Tag == "r" {
			toRemove = append(toRemove, child)
		}
	}

	for _, child := range toRemove {
		p.RemoveChild(child)
	}

	for _, run := range block.Runs {
		p.AddChild(buildFrameRun(run))
	}
}

func buildFrameRun(run runs.Run) *etree.Element {
	r := etree.NewElement("a:r")

	if rPr := buildFrameRunProps(run.Format); rPr != nil {
		r.AddChild(rPr)
	}

	t := r.CreateElement("a:t")
	t.SetText(run.Text)

	return r
}

func buildFrameRunProps(f runs.Format) *etree.Element {
	if f.Bold == nil && f.Italic == nil && f.Underline == nil && f.FontName == nil && f.FontSize == nil {
		return nil
	}

	rPr := etree.NewElement("a:rPr")

	if f.FontSize != nil {
		rPr.CreateAttr("sz", strconv.Itoa(int(*f.FontSize*100)))
	}

	if f.Bold != nil {
		rPr.CreateAttr("b", boolAttr(*f.Bold))
	}

	if f.Italic != nil {
		rPr.CreateAttr("i", boolAttr(*f.Italic))
	}

	if f.Underline != nil {
		if *f.Underline {
			rPr.CreateAttr("u", "sng")
		} else {
			rPr.CreateAttr("u", "none")
		}
	}

	if f.FontName != nil {
		latin := rPr.CreateElement("a:latin")
		latin.CreateAttr("typeface", *f.FontName)
	}

	return rPr
}

func boolAttr(v bool) string {
	if v {
		return "1"
	}

	return "0"
}

// setFrameText rewrites a text frame as one paragraph with one run carrying
// the frame's first run formatting (same single-run policy as the docx
// engine). Non-paragraph children (bodyPr, lstStyle) are preserved.
func setFrameText(tb *etree.Element, text string) {
	var format runs.Format

	var ps []*etree.Element

	for _, child := range tb.ChildElements() {
		if child.Tag == "p" {
			ps = append(ps, child)
		}
	}

	if len(ps) > 0 {
		block := blockFromFrameParagraph(ps[0])
		if len(block.Runs) > 0 {
			format = block.Runs[0].Format
		}
	}

	for _, p := range ps {
		tb.RemoveChild(p)
	}

	p := tb.CreateElement("a:p")
	p.AddChild(buildFrameRun(runs.Run{Text: text, Format: format}))
}
