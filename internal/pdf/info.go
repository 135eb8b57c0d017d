package pdf

import (
	"os"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
)

// Info is a document's page count and metadata.
type Info struct {
	PageCount int    `json:"page_count"`
	Encrypted bool   `json:"encrypted"`
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Creator   string `json:"creator,omitempty"`
	Producer  string `json:"producer,omitempty"`
	Created   string `json:"created,omitempty"`
	Modified  string `json:"modified,omitempty"`
}

// ReadInfo reports page count, encryption state, and the Info dictionary.
// An encrypted document still yields a result with Encrypted set; its
// metadata stays empty rather than failing the whole call.
func ReadInfo(path string) (*Info, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errfmt.Wrap(errfmt.NotFound, err, "opening PDF")
	}

	count, err := api.PageCountFile(path)
	if err != nil {
		if isEncryptionErr(err) {
			return &Info{Encrypted: true}, nil
		}

		return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "reading PDF")
	}

	info := &Info{PageCount: count}

	f, r, err := ledongthuc.Open(path)
	if err != nil {
		// Structure already validated by pdfcpu; text-layer quirks that
		// trip the reader should not fail an info call.
		return info, nil
	}
	defer f.Close()

	dict := r.Trailer().Key("Info")
	if dict.IsNull() {
		return info, nil
	}

	info.Title = dict.Key("Title").Text()
	info.Author = dict.Key("Author").Text()
	info.Subject = dict.Key("Subject").Text()
	info.Creator = dict.Key("Creator").Text()
	info.Producer = dict.Key("Producer").Text()
	info.Created = dict.Key("CreationDate").Text()
	info.Modified = dict.Key("ModDate").Text()

	return info, nil
}

func isEncryptionErr(err error) bool {
	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "encrypt") || strings.Contains(msg, "password")
}
