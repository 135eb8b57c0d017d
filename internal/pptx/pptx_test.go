package pptx

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/ooxml"
)

const deckContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="png" ContentType="image/png"/>
  <Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>
  <Override PartName="/ppt/slides/slide1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>
  <Override PartName="/ppt/slides/slide2.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>
</Types>`

const deckPresentation = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <p:sldIdLst>
    <p:sldId id="256" r:id="rId1"/>
    <p:sldId id="257" r:id="rId2"/>
  </p:sldIdLst>
</p:presentation>`

const deckPresentationRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide2.xml"/>
</Relationships>`

// slide1: a body placeholder with split runs, a named title shape, and a
// picture referencing media through rId2.
const deckSlide1 = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <p:cSld><p:spTree>
    <p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
    <p:grpSpPr/>
    <p:sp>
      <p:nvSpPr><p:cNvPr id="2" name="Content Placeholder 1"/><p:cNvSpPr/><p:nvPr><p:ph idx="1"/></p:nvPr></p:nvSpPr>
      <p:spPr><a:xfrm><a:off x="100" y="5000"/><a:ext cx="300" cy="400"/></a:xfrm></p:spPr>
      <p:txBody><a:bodyPr/>
        <a:p><a:r><a:rPr b="1" sz="2400"/><a:t>Hel</a:t></a:r><a:r><a:t>lo deck</a:t></a:r></a:p>
      </p:txBody>
    </p:sp>
    <p:sp>
      <p:nvSpPr><p:cNvPr id="3" name="Title 1"/><p:cNvSpPr/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>
      <p:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="100" cy="50"/></a:xfrm></p:spPr>
      <p:txBody><a:bodyPr/><a:p><a:r><a:t>Slide One Title</a:t></a:r></a:p></p:txBody>
    </p:sp>
    <p:pic>
      <p:nvPicPr><p:cNvPr id="4" name="Picture 1"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>
      <p:blipFill><a:blip r:embed="rId2"/></p:blipFill>
      <p:spPr/>
    </p:pic>
  </p:spTree></p:cSld>
</p:sld>`

const deckSlide1Rels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image1.png"/>
</Relationships>`

// slide2: no shape name contains "title"; the ctrTitle placeholder must be
// picked by the placeholder rule.
const deckSlide2 = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree>
    <p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
    <p:grpSpPr/>
    <p:sp>
      <p:nvSpPr><p:cNvPr id="2" name="Body 1"/><p:cNvSpPr/><p:nvPr><p:ph type="body"/></p:nvPr></p:nvSpPr>
      <p:spPr><a:xfrm><a:off x="0" y="100"/><a:ext cx="10" cy="10"/></a:xfrm></p:spPr>
      <p:txBody><a:bodyPr/><a:p><a:r><a:t>Agenda item</a:t></a:r></a:p></p:txBody>
    </p:sp>
    <p:sp>
      <p:nvSpPr><p:cNvPr id="3" name="TextBox 3"/><p:cNvSpPr/><p:nvPr><p:ph type="ctrTitle"/></p:nvPr></p:nvSpPr>
      <p:spPr><a:xfrm><a:off x="0" y="900"/><a:ext cx="10" cy="10"/></a:xfrm></p:spPr>
      <p:txBody><a:bodyPr/><a:p><a:r><a:t>Centered heading</a:t></a:r></a:p></p:txBody>
    </p:sp>
  </p:spTree></p:cSld>
</p:sld>`

const deckLayout1 = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldLayout xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld name="Title Slide"><p:spTree/></p:cSld>
</p:sldLayout>`

const pngData = "\x89PNG\r\n\x1a\n"

func deckParts() map[string]string {
	return map[string]string{
		"[Content_Types].xml":               deckContentTypes,
		"ppt/presentation.xml":              deckPresentation,
		"ppt/_rels/presentation.xml.rels":   deckPresentationRels,
		"ppt/slides/slide1.xml":             deckSlide1,
		"ppt/slides/_rels/slide1.xml.rels":  deckSlide1Rels,
		"ppt/slides/slide2.xml":             deckSlide2,
		"ppt/slideLayouts/slideLayout1.xml": deckLayout1,
		"ppt/media/image1.png":              pngData,
	}
}

func writeDeck(t *testing.T, parts map[string]string) *ooxml.Session {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.pptx")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip entry %s: %v", name, err)
		}

		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	session, err := Open(path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}

	return session
}

func newTestDeck(t *testing.T) *ooxml.Session {
	t.Helper()

	return writeDeck(t, deckParts())
}

func TestReadDeck(t *testing.T) {
	session := newTestDeck(t)

	pres, err := Read(session, 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if pres.SlideCount != 2 {
		t.Fatalf("slide count = %d, want 2", pres.SlideCount)
	}

	shapes := pres.Slides[0].Shapes
	if len(shapes) != 3 {
		t.Fatalf("slide 1 shapes = %d, want 3", len(shapes))
	}

	if shapes[0].Kind != KindText || shapes[0].Text != "Hello deck" {
		t.Errorf("shape 0 = %s %q, want text %q (split runs must concatenate)",
			shapes[0].Kind, shapes[0].Text, "Hello deck")
	}

	if shapes[2].Kind != KindImage || shapes[2].Name != "Picture 1" {
		t.Errorf("shape 2 = %s %q, want image Picture 1", shapes[2].Kind, shapes[2].Name)
	}

	if shapes[0].Left != 100 || shapes[0].Top != 5000 {
		t.Errorf("shape 0 position = (%d,%d), want (100,5000)", shapes[0].Left, shapes[0].Top)
	}
}

func TestReadSingleSlideStrict(t *testing.T) {
	session := newTestDeck(t)

	pres, err := Read(session, 2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(pres.Slides) != 1 || pres.Slides[0].Number != 2 {
		t.Fatalf("slides = %+v, want just slide 2", pres.Slides)
	}

	if _, err := Read(session, 3); errfmt.KindOf(err) != errfmt.OutOfRange {
		t.Errorf("slide 3: kind = %v, want OutOfRange", errfmt.KindOf(err))
	}
}

func TestSlideOrderFollowsSlideList(t *testing.T) {
	parts := deckParts()

	// Reverse the sldIdLst: slide2.xml becomes slide number 1.
	parts["ppt/presentation.xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <p:sldIdLst>
    <p:sldId id="257" r:id="rId2"/>
    <p:sldId id="256" r:id="rId1"/>
  </p:sldIdLst>
</p:presentation>`

	session := writeDeck(t, parts)

	pres, err := Read(session, 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got := pres.Slides[0].Shapes[0].Text; got != "Agenda item" {
		t.Errorf("slide 1 shape 0 = %q, want slide2 content (order comes from sldIdLst)", got)
	}
}

func TestResolveTitleByName(t *testing.T) {
	session := newTestDeck(t)

	result, err := EditTitle(session, 1, "New Title")
	if err != nil {
		t.Fatalf("EditTitle: %v", err)
	}

	if result.Shape != "Title 1" {
		t.Errorf("resolved shape = %q, want Title 1 (name match outranks z-order)", result.Shape)
	}
}

func TestResolveTitleSkipsSubtitle(t *testing.T) {
	parts := deckParts()

	// The subtitle sits first in z-order and even contains the word
	// "Title" in its text; the shape named "Title 1" must still win.
	parts["ppt/slides/slide1.xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree>
    <p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
    <p:grpSpPr/>
    <p:sp>
      <p:nvSpPr><p:cNvPr id="2" name="Subtitle Placeholder"/><p:cNvSpPr/><p:nvPr><p:ph type="subTitle"/></p:nvPr></p:nvSpPr>
      <p:spPr/>
      <p:txBody><a:bodyPr/><a:p><a:r><a:t>Title</a:t></a:r></a:p></p:txBody>
    </p:sp>
    <p:sp>
      <p:nvSpPr><p:cNvPr id="3" name="Title 1"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>
      <p:spPr/>
      <p:txBody><a:bodyPr/><a:p><a:r><a:t>Welcome</a:t></a:r></a:p></p:txBody>
    </p:sp>
  </p:spTree></p:cSld>
</p:sld>`

	session := writeDeck(t, parts)

	result, err := EditTitle(session, 1, "x")
	if err != nil {
		t.Fatalf("EditTitle: %v", err)
	}

	if result.Shape != "Title 1" {
		t.Errorf("resolved shape = %q, want Title 1, never the subtitle", result.Shape)
	}
}

func TestResolveTitleByPlaceholder(t *testing.T) {
	session := newTestDeck(t)

	result, err := EditTitle(session, 2, "Renamed")
	if err != nil {
		t.Fatalf("EditTitle: %v", err)
	}

	if result.Shape != "TextBox 3" {
		t.Errorf("resolved shape = %q, want the ctrTitle placeholder TextBox 3", result.Shape)
	}

	pres, err := Read(session, 2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got := pres.Slides[0].Shapes[1].Text; got != "Renamed" {
		t.Errorf("title text = %q, want Renamed", got)
	}
}

func TestSelectorModes(t *testing.T) {
	session := newTestDeck(t)

	doc, err := session.Part("ppt/slides/slide1.xml")
	if err != nil {
		t.Fatalf("Part: %v", err)
	}

	shapes := shapesOf(doc)

	byIndex, err := resolveShape(shapes, Selector{Index: 1})
	if err != nil || byIndex.Name != "Title 1" {
		t.Errorf("by index: %v %v", byIndex, err)
	}

	byName, err := resolveShape(shapes, Selector{Index: -1, Name: "content"})
	if err != nil || byName.Name != "Content Placeholder 1" {
		t.Errorf("by name: %v %v", byName, err)
	}

	byMatch, err := resolveShape(shapes, Selector{Index: -1, Match: "hello"})
	if err != nil || byMatch.Name != "Content Placeholder 1" {
		t.Errorf("by match: %v %v", byMatch, err)
	}

	if _, err := resolveShape(shapes, Selector{Index: 9}); errfmt.KindOf(err) != errfmt.OutOfRange {
		t.Errorf("index out of range: kind = %v", errfmt.KindOf(err))
	}

	if _, err := resolveShape(shapes, Selector{Index: -1, Name: "nope"}); errfmt.KindOf(err) != errfmt.NotFoundSemantic {
		t.Errorf("name miss: kind = %v", errfmt.KindOf(err))
	}

	if _, err := resolveShape(shapes, Selector{Index: -1}); errfmt.KindOf(err) != errfmt.ValidationError {
		t.Errorf("no mode: kind = %v", errfmt.KindOf(err))
	}

	if _, err := resolveShape(shapes, Selector{Index: 0, Name: "x"}); errfmt.KindOf(err) != errfmt.ValidationError {
		t.Errorf("two modes: kind = %v", errfmt.KindOf(err))
	}
}

func TestEditShapeText(t *testing.T) {
	session := newTestDeck(t)

	_, err := EditShape(session, 1, Selector{Index: 0}, "Replaced body")
	if err != nil {
		t.Fatalf("EditShape: %v", err)
	}

	pres, err := Read(session, 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got := pres.Slides[0].Shapes[0].Text; got != "Replaced body" {
		t.Errorf("text = %q, want Replaced body", got)
	}
}

func TestEditImageShapeRejected(t *testing.T) {
	session := newTestDeck(t)

	_, err := EditShape(session, 1, Selector{Index: 2}, "x")
	if errfmt.KindOf(err) != errfmt.ValidationError {
		t.Errorf("kind = %v, want ValidationError for a picture shape", errfmt.KindOf(err))
	}
}

func TestReplaceAcrossSlides(t *testing.T) {
	session := newTestDeck(t)

	result, err := Replace(session, 0, "Hello deck", "Howdy")
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if result.Replacements != 1 {
		t.Errorf("replacements = %d, want 1 (match spans two runs)", result.Replacements)
	}

	pres, err := Read(session, 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got := pres.Slides[0].Shapes[0].Text; got != "Howdy" {
		t.Errorf("text = %q, want Howdy", got)
	}
}

func TestReplaceScopedToSlide(t *testing.T) {
	session := newTestDeck(t)

	result, err := Replace(session, 2, "Slide One Title", "x")
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if result.Replacements != 0 {
		t.Errorf("replacements = %d, want 0 (text lives on slide 1)", result.Replacements)
	}
}

func TestApplyUpdates(t *testing.T) {
	session := newTestDeck(t)

	updates := `[
		{"slide": 1, "shape": 0, "text": "Batched body"},
		{"slide": 1, "title": "Batched Title"},
		{"slide": 2, "notes": "Batched notes"}
	]`

	result, err := ApplyUpdates(session, updates)
	if err != nil {
		t.Fatalf("ApplyUpdates: %v", err)
	}

	if result.Count != 3 {
		t.Fatalf("count = %d, want 3: %v", result.Count, result.UpdatedItems)
	}

	pres, err := Read(session, 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got := pres.Slides[0].Shapes[0].Text; got != "Batched body" {
		t.Errorf("shape text = %q", got)
	}

	if got := pres.Slides[0].Shapes[1].Text; got != "Batched Title" {
		t.Errorf("title text = %q", got)
	}

	if got := pres.Slides[1].Notes; got != "Batched notes" {
		t.Errorf("notes = %q", got)
	}
}

func TestApplyUpdatesValidation(t *testing.T) {
	session := newTestDeck(t)

	// A shape entry without text is rejected before anything is written.
	if _, err := ApplyUpdates(session, `[{"slide": 1, "shape": 0}]`); errfmt.KindOf(err) != errfmt.ValidationError {
		t.Errorf("kind = %v, want ValidationError", errfmt.KindOf(err))
	}

	if _, err := ApplyUpdates(session, `[{"slide": 9, "title": "x"}]`); errfmt.KindOf(err) != errfmt.OutOfRange {
		t.Errorf("bad slide: kind = %v, want OutOfRange", errfmt.KindOf(err))
	}
}

func TestEditNotesCreatesPart(t *testing.T) {
	session := newTestDeck(t)

	result, err := EditNotes(session, 1, "Remember the demo")
	if err != nil {
		t.Fatalf("EditNotes: %v", err)
	}

	if result.Notes != "Remember the demo" {
		t.Errorf("notes = %q", result.Notes)
	}

	pres, err := Read(session, 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if pres.Slides[0].Notes != "Remember the demo" {
		t.Errorf("read-back notes = %q, want the edited text", pres.Slides[0].Notes)
	}
}

func TestEditNotesRelsWithoutNotesMaster(t *testing.T) {
	session := newTestDeck(t)

	if _, err := EditNotes(session, 1, "no master here"); err != nil {
		t.Fatalf("EditNotes: %v", err)
	}

	rels, err := session.RawPart("ppt/notesSlides/_rels/notesSlide1.xml.rels")
	if err != nil {
		t.Fatalf("RawPart: %v", err)
	}

	if strings.Contains(string(rels), "notesMaster") {
		t.Errorf("notes rels reference a notes master the deck does not have:\n%s", rels)
	}

	if !strings.Contains(string(rels), `Id="rId1"`) || !strings.Contains(string(rels), "../slides/slide1.xml") {
		t.Errorf("notes rels missing the slide relationship at rId1:\n%s", rels)
	}
}

func TestEditNotesRelsWithNotesMaster(t *testing.T) {
	parts := deckParts()
	parts["ppt/notesMasters/notesMaster1.xml"] = `<?xml version="1.0"?>` +
		`<p:notesMaster xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`

	session := writeDeck(t, parts)

	if _, err := EditNotes(session, 1, "master present"); err != nil {
		t.Fatalf("EditNotes: %v", err)
	}

	rels, err := session.RawPart("ppt/notesSlides/_rels/notesSlide1.xml.rels")
	if err != nil {
		t.Fatalf("RawPart: %v", err)
	}

	if !strings.Contains(string(rels), "../notesMasters/notesMaster1.xml") {
		t.Errorf("notes rels missing the notes master relationship:\n%s", rels)
	}
}

func TestAddSlide(t *testing.T) {
	session := newTestDeck(t)

	result, err := AddSlide(session, 0, "Fresh Title", "Fresh body")
	if err != nil {
		t.Fatalf("AddSlide: %v", err)
	}

	if result.Slide != 3 || result.SlideCount != 3 {
		t.Errorf("result = %+v, want slide 3 of 3", result)
	}

	if result.Layout != "Title Slide" {
		t.Errorf("layout = %q, want Title Slide", result.Layout)
	}

	pres, err := Read(session, 3)
	if err != nil {
		t.Fatalf("Read new slide: %v", err)
	}

	shapes := pres.Slides[0].Shapes
	if len(shapes) != 2 {
		t.Fatalf("new slide shapes = %d, want 2", len(shapes))
	}

	if shapes[0].Text != "Fresh Title" || shapes[1].Text != "Fresh body" {
		t.Errorf("placeholder texts = %q, %q", shapes[0].Text, shapes[1].Text)
	}
}

func TestAddSlideBadLayout(t *testing.T) {
	session := newTestDeck(t)

	if _, err := AddSlide(session, 5, "t", "c"); errfmt.KindOf(err) != errfmt.OutOfRange {
		t.Errorf("kind = %v, want OutOfRange", errfmt.KindOf(err))
	}
}

func TestLayouts(t *testing.T) {
	session := newTestDeck(t)

	result, err := Layouts(session)
	if err != nil {
		t.Fatalf("Layouts: %v", err)
	}

	if result.LayoutCount != 1 || result.Layouts[0].Name != "Title Slide" {
		t.Errorf("layouts = %+v", result)
	}
}

func TestExtractImages(t *testing.T) {
	session := newTestDeck(t)

	dir := t.TempDir()

	result, err := ExtractImages(session, 0, dir)
	if err != nil {
		t.Fatalf("ExtractImages: %v", err)
	}

	if result.ImageCount != 1 {
		t.Fatalf("image count = %d, want 1", result.ImageCount)
	}

	img := result.Images[0]
	if img.Slide != 1 || filepath.Base(img.Path) != "slide1_image1.png" {
		t.Errorf("image = %+v", img)
	}

	data, err := os.ReadFile(img.Path)
	if err != nil {
		t.Fatalf("read extracted image: %v", err)
	}

	if string(data) != pngData {
		t.Error("extracted bytes differ from the embedded media")
	}
}

func TestAddSlidePersists(t *testing.T) {
	session := newTestDeck(t)

	if _, err := AddSlide(session, 0, "T", "C"); err != nil {
		t.Fatalf("AddSlide: %v", err)
	}

	if err := session.SaveInPlace(); err != nil {
		t.Fatalf("SaveInPlace: %v", err)
	}

	reopened, err := Open(session.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	pres, err := Read(reopened, 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if pres.SlideCount != 3 {
		t.Errorf("slide count after reopen = %d, want 3", pres.SlideCount)
	}
}
