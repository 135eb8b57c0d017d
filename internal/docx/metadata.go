package docx

import (
	"strings"

	"github.com/docsmith-dev/docsmith/internal/ooxml"
)

// Info holds document statistics and core properties.
type Info struct {
	ParagraphCount int        `json:"paragraph_count"`
	TableCount     int        `json:"table_count"`
	WordCount      int        `json:"word_count"`
	Properties     Properties `json:"properties"`
}

// Properties mirrors docProps/core.xml (Dublin Core metadata).
type Properties struct {
	Title          string `json:"title,omitempty"`
	Author         string `json:"author,omitempty"`
	Subject        string `json:"subject,omitempty"`
	Keywords       string `json:"keywords,omitempty"`
	Created        string `json:"created,omitempty"`
	Modified       string `json:"modified,omitempty"`
	LastModifiedBy string `json:"last_modified_by,omitempty"`
}

// ReadInfo extracts counts and core properties. docProps parts are optional;
// missing or unparseable metadata leaves fields at their zero value.
func ReadInfo(session *ooxml.Session) (*Info, error) {
	b, err := body(session)
	if err != nil {
		return nil, err
	}

	info := &Info{
		ParagraphCount: len(paragraphs(b)),
		TableCount:     len(tables(b)),
	}

	for _, p := range paragraphs(b) {
		info.WordCount += len(strings.Fields(paragraphText(p)))
	}

	readCoreProperties(session, &info.Properties)

	return info, nil
}

// readCoreProperties fills props from docProps/core.xml. etree strips
// namespace prefixes, so elements are matched by local name.
func readCoreProperties(session *ooxml.Session, props *Properties) {
	doc, err := session.Part("docProps/core.xml")
	if err != nil {
		return
	}

	root := doc.Root()
	if root == nil {
		return
	}

	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "title":
			props.Title = child.Text()
		case "creator":
			props.Author = child.Text()
		case "subject":
			props.Subject = child.Text()
		case "keywords":
			props.Keywords = child.Text()
		case "created":
			props.Created = child.Text()
		case "modified":
			props.Modified = child.Text()
		case "lastModifiedBy":
			props.LastModifiedBy = child.Text()
		}
	}
}
