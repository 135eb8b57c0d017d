package pptx

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/ooxml"
	"github.com/docsmith-dev/docsmith/internal/runs"
)

const (
	nsDrawing      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPresentation = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsRelationship = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	relTypeSlide       = nsRelationship + "/slide"
	relTypeSlideLayout = nsRelationship + "/slideLayout"
	relTypeNotesSlide  = nsRelationship + "/notesSlide"
	relTypeNotesMaster = nsRelationship + "/notesMaster"

	slideContentType = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	notesContentType = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"

	contentTypesPart = "[Content_Types].xml"
)

// LayoutInfo is one slide layout.
type LayoutInfo struct {
	Index int    `json:"layout_index"`
	Name  string `json:"name"`
	Part  string `json:"-"`
}

// LayoutsResult lists the layouts available for new slides.
type LayoutsResult struct {
	LayoutCount int          `json:"layout_count"`
	Layouts     []LayoutInfo `json:"layouts"`
}

// Layouts enumerates slide layouts in part-number order.
func Layouts(session *ooxml.Session) (*LayoutsResult, error) {
	parts := layoutParts(session)

	result := &LayoutsResult{LayoutCount: len(parts)}

	for i, part := range parts {
		info := LayoutInfo{Index: i, Part: part}

		if doc, err := session.Part(part); err == nil {
			info.Name = layoutName(doc)
		}

		result.Layouts = append(result.Layouts, info)
	}

	return result, nil
}

func layoutParts(session *ooxml.Session) []string {
	parts := session.PartsWithPrefix("ppt/slideLayouts/slideLayout")

	var out []string

	for _, p := range parts {
		if strings.HasSuffix(p, ".xml") {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return partNumber(out[i]) < partNumber(out[j])
	})

	return out
}

// layoutName reads the layout's display name from cSld@name.
func layoutName(doc *etree.Document) string {
	root := doc.Root()
	if root == nil {
		return ""
	}

	for _, cSld := range root.ChildElements() {
		if cSld.Tag == "cSld" {
			return attrValue(cSld, "name")
		}
	}

	return ""
}

// partNumber extracts the trailing integer from a part name like
// "ppt/slides/slide12.xml".
func partNumber(part string) int {
	base := strings.TrimSuffix(part[strings.LastIndex(part, "/")+1:], ".xml")

	i := len(base)
	for i > 0 && base[i-1] >= '0' && base[i-1] <= '9' {
		i--
	}

	n, err := strconv.Atoi(base[i:])
	if err != nil {
		return 0
	}

	return n
}

// AddSlideResult reports slide creation.
type AddSlideResult struct {
	Status     string `json:"status"`
	Slide      int    `json:"slide_number"`
	SlideCount int    `json:"slide_count"`
	Layout     string `json:"layout,omitempty"`
}

// AddSlide appends a new slide built from a layout, with optional title and
// body text. Four parts move together: the slide XML, its relationships, the
// content-type override, and the presentation's slide list.
func AddSlide(session *ooxml.Session, layoutIndex int, title, content string) (*AddSlideResult, error) {
	layouts := layoutParts(session)
	if len(layouts) == 0 {
		return nil, errfmt.New(errfmt.InvalidFormat, "presentation has no slide layouts")
	}

	if layoutIndex < 0 || layoutIndex >= len(layouts) {
		return nil, errfmt.New(errfmt.OutOfRange,
			"layout index %d out of range: presentation has %d layouts", layoutIndex, len(layouts))
	}

	layoutPart := layouts[layoutIndex]

	existing, err := slideParts(session)
	if err != nil {
		return nil, err
	}

	num := 0
	for _, p := range session.PartsWithPrefix("ppt/slides/slide") {
		if n := partNumber(p); n > num {
			num = n
		}
	}
	num++

	slidePartName := fmt.Sprintf("ppt/slides/slide%d.xml", num)

	slideXML, err := buildSlideXML(title, content)
	if err != nil {
		return nil, err
	}

	session.AddRawPart(slidePartName, slideXML)

	relsXML, err := buildSlideRelsXML(layoutPart)
	if err != nil {
		return nil, err
	}

	session.AddRawPart(slideRelsPart(slidePartName), relsXML)

	if err := addContentTypeOverride(session, "/"+slidePartName, slideContentType); err != nil {
		return nil, err
	}

	if err := appendToSlideList(session, slidePartName); err != nil {
		return nil, err
	}

	var layoutDisplay string
	if doc, err := session.Part(layoutPart); err == nil {
		layoutDisplay = layoutName(doc)
	}

	return &AddSlideResult{
		Status:     "success",
		Slide:      len(existing) + 1,
		SlideCount: len(existing) + 1,
		Layout:     layoutDisplay,
	}, nil
}

// buildSlideXML produces a minimal slide: a title placeholder and a body
// placeholder, each with the given text. Positioning is inherited from the
// layout, so the shapes carry no xfrm of their own.
func buildSlideXML(title, content string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	sld := doc.CreateElement("p:sld")
	sld.CreateAttr("xmlns:a", nsDrawing)
	sld.CreateAttr("xmlns:p", nsPresentation)
	sld.CreateAttr("xmlns:r", nsRelationship)

	cSld := sld.CreateElement("p:cSld")
	tree := cSld.CreateElement("p:spTree")

	nvGrpSpPr := tree.CreateElement("p:nvGrpSpPr")
	cNvPr := nvGrpSpPr.CreateElement("p:cNvPr")
	cNvPr.CreateAttr("id", "1")
	cNvPr.CreateAttr("name", "")
	nvGrpSpPr.CreateElement("p:cNvGrpSpPr")
	nvGrpSpPr.CreateElement("p:nvPr")

	grpSpPr := tree.CreateElement("p:grpSpPr")
	grpSpPr.CreateElement("a:xfrm")

	tree.AddChild(buildPlaceholderShape(2, "Title 1", "title", title))
	tree.AddChild(buildPlaceholderShape(3, "Content Placeholder 2", "body", content))

	sld.CreateElement("p:clrMapOvr").CreateElement("a:overrideClrMapping")

	return docBytes(doc)
}

func buildPlaceholderShape(id int, name, phType, text string) *etree.Element {
	sp := etree.NewElement("p:sp")

	nvSpPr := sp.CreateElement("p:nvSpPr")
	cNvPr := nvSpPr.CreateElement("p:cNvPr")
	cNvPr.CreateAttr("id", strconv.Itoa(id))
	cNvPr.CreateAttr("name", name)
	cNvSpPr := nvSpPr.CreateElement("p:cNvSpPr")
	cNvSpPr.CreateElement("a:spLocks").CreateAttr("noGrp", "1")
	ph := nvSpPr.CreateElement("p:nvPr").CreateElement("p:ph")
	ph.CreateAttr("type", phType)
	if phType == "body" {
		ph.CreateAttr("idx", "1")
	}

	sp.CreateElement("p:spPr")

	tb := sp.CreateElement("p:txBody")
	tb.CreateElement("a:bodyPr")
	tb.CreateElement("a:lstStyle")

	p := tb.CreateElement("a:p")
	if text != "" {
		p.AddChild(buildFrameRun(runs.Run{Text: text}))
	}

	return sp
}

func buildSlideRelsXML(layoutPart string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")

	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", "rId1")
	rel.CreateAttr("Type", relTypeSlideLayout)
	rel.CreateAttr("Target", "../slideLayouts/"+layoutPart[strings.LastIndex(layoutPart, "/")+1:])

	return docBytes(doc)
}

// addContentTypeOverride registers a part in [Content_Types].xml, once.
func addContentTypeOverride(session *ooxml.Session, partName, contentType string) error {
	doc, err := session.Part(contentTypesPart)
	if err != nil {
		return err
	}

	root := doc.Root()
	if root == nil {
		return errfmt.New(errfmt.InvalidFormat, "content types part has no root element")
	}

	for _, child := range root.ChildElements() {
		if child.Tag == "Override" && attrValue(child, "PartName") == partName {
			return nil
		}
	}

	override := root.CreateElement("Override")
	override.CreateAttr("PartName", partName)
	override.CreateAttr("ContentType", contentType)

	session.MarkDirty(contentTypesPart)

	return nil
}

// appendToSlideList wires a new slide part into ppt/presentation.xml's
// sldIdLst and the presentation relationships.
func appendToSlideList(session *ooxml.Session, slidePartName string) error {
	rid, err := addPresentationRel(session, relTypeSlide, "slides/"+slidePartName[strings.LastIndex(slidePartName, "/")+1:])
	if err != nil {
		return err
	}

	doc, err := session.Part(presentationPart)
	if err != nil {
		return err
	}

	root := doc.Root()
	if root == nil {
		return errfmt.New(errfmt.InvalidFormat, "presentation.xml has no root element")
	}

	var list *etree.Element

	for _, child := range root.ChildElements() {
		if child.Tag == "sldIdLst" {
			list = child

			break
		}
	}

	if list == nil {
		return errfmt.New(errfmt.InvalidFormat, "presentation.xml has no slide list")
	}

	// Slide ids live in their own numbering space starting at 256.
	maxID := 255

	for _, sldID := range list.ChildElements() {
		if n, err := strconv.Atoi(attrValue(sldID, "id")); err == nil && n > maxID {
			maxID = n
		}
	}

	sldID := list.CreateElement("p:sldId")
	sldID.CreateAttr("id", strconv.Itoa(maxID+1))
	sldID.CreateAttr("r:id", rid)

	session.MarkDirty(presentationPart)

	return nil
}

// addPresentationRel adds a relationship to the presentation rels part and
// returns its fresh id.
func addPresentationRel(session *ooxml.Session, relType, target string) (string, error) {
	doc, err := session.Part(presentationRels)
	if err != nil {
		return "", err
	}

	root := doc.Root()
	if root == nil {
		return "", errfmt.New(errfmt.InvalidFormat, "presentation rels part has no root element")
	}

	maxID := 0

	for _, rel := range root.ChildElements() {
		id := attrValue(rel, "Id")
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "rId")); err == nil && n > maxID {
			maxID = n
		}
	}

	rid := fmt.Sprintf("rId%d", maxID+1)

	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", rid)
	rel.CreateAttr("Type", relType)
	rel.CreateAttr("Target", target)

	session.MarkDirty(presentationRels)

	return rid, nil
}

// createNotesPart builds a notes slide for a slide that has none and wires
// it into the slide's relationships and the content types.
func createNotesPart(session *ooxml.Session, slidePartName string, slideNumber int) (string, error) {
	num := 0
	for _, p := range session.PartsWithPrefix("ppt/notesSlides/notesSlide") {
		if n := partNumber(p); n > num {
			num = n
		}
	}
	num++

	notesPart := fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", num)

	notesXML, err := buildNotesXML()
	if err != nil {
		return "", err
	}

	session.AddRawPart(notesPart, notesXML)

	relsXML, err := buildNotesRelsXML(session, slidePartName)
	if err != nil {
		return "", err
	}

	session.AddRawPart(notesRelsPart(notesPart), relsXML)

	if err := addContentTypeOverride(session, "/"+notesPart, notesContentType); err != nil {
		return "", err
	}

	if err := addSlideRel(session, slidePartName, relTypeNotesSlide,
		"../notesSlides/"+notesPart[strings.LastIndex(notesPart, "/")+1:]); err != nil {
		return "", err
	}

	return notesPart, nil
}

func notesRelsPart(notesPart string) string {
	base := notesPart[strings.LastIndex(notesPart, "/")+1:]

	return "ppt/notesSlides/_rels/" + base + ".rels"
}

func buildNotesXML() ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	notes := doc.CreateElement("p:notes")
	notes.CreateAttr("xmlns:a", nsDrawing)
	notes.CreateAttr("xmlns:p", nsPresentation)
	notes.CreateAttr("xmlns:r", nsRelationship)

	cSld := notes.CreateElement("p:cSld")
	tree := cSld.CreateElement("p:spTree")

	nvGrpSpPr := tree.CreateElement("p:nvGrpSpPr")
	cNvPr := nvGrpSpPr.CreateElement("p:cNvPr")
	cNvPr.CreateAttr("id", "1")
	cNvPr.CreateAttr("name", "")
	nvGrpSpPr.CreateElement("p:cNvGrpSpPr")
	nvGrpSpPr.CreateElement("p:nvPr")

	grpSpPr := tree.CreateElement("p:grpSpPr")
	grpSpPr.CreateElement("a:xfrm")

	tree.AddChild(buildPlaceholderShape(2, "Notes Placeholder 1", "body", ""))

	notes.CreateElement("p:clrMapOvr").CreateElement("a:overrideClrMapping")

	return docBytes(doc)
}

// buildNotesRelsXML links a notes slide back to its slide and, when the deck
// has one, the notes master.
func buildNotesRelsXML(session *ooxml.Session, slidePartName string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")

	rid := 1

	if session.HasPart("ppt/notesMasters/notesMaster1.xml") {
		rel := root.CreateElement("Relationship")
		rel.CreateAttr("Id", fmt.Sprintf("rId%d", rid))
		rel.CreateAttr("Type", relTypeNotesMaster)
		rel.CreateAttr("Target", "../notesMasters/notesMaster1.xml")
		rid++
	}

	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", fmt.Sprintf("rId%d", rid))
	rel.CreateAttr("Type", nsRelationship+"/slide")
	rel.CreateAttr("Target", "../slides/"+slidePartName[strings.LastIndex(slidePartName, "/")+1:])

	return docBytes(doc)
}

// addSlideRel appends a relationship to a slide's rels part, creating the
// part when the slide has none yet.
func addSlideRel(session *ooxml.Session, slidePartName, relType, target string) error {
	relsPart := slideRelsPart(slidePartName)

	if !session.HasPart(relsPart) {
		doc := etree.NewDocument()
		doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		root := doc.CreateElement("Relationships")
		root.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")

		data, err := docBytes(doc)
		if err != nil {
			return err
		}

		session.AddRawPart(relsPart, data)
	}

	doc, err := session.Part(relsPart)
	if err != nil {
		return err
	}

	root := doc.Root()
	if root == nil {
		return errfmt.New(errfmt.InvalidFormat, "%s has no root element", relsPart)
	}

	maxID := 0

	for _, rel := range root.ChildElements() {
		id := attrValue(rel, "Id")
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "rId")); err == nil && n > maxID {
			maxID = n
		}
	}

	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", fmt.Sprintf("rId%d", maxID+1))
	rel.CreateAttr("Type", relType)
	rel.CreateAttr("Target", target)

	session.MarkDirty(relsPart)

	return nil
}

func docBytes(doc *etree.Document) ([]byte, error) {
	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, errfmt.Wrap(errfmt.IOError, err, "serializing XML part")
	}

	return data, nil
}
