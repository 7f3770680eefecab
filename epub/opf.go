package epub

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
	"time"
)

const (
	opfNamespace = "http://www.idpf.org/2007/opf"
	dcNamespace  = "http://purl.org/dc/elements/1.1/"
	opfPrefixes  = "calibre: https://calibre-ebook.com"
)

// opfPackage is the package document as written to metadata.opf.
type opfPackage struct {
	XMLName          xml.Name    `xml:"package"`
	Xmlns            string      `xml:"xmlns,attr"`
	Version          string      `xml:"version,attr"`
	UniqueIdentifier string      `xml:"unique-identifier,attr"`
	Prefix           string      `xml:"prefix,attr"`
	Metadata         opfMetadata `xml:"metadata"`
	Manifest         opfManifest `xml:"manifest"`
	Spine            opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	XmlnsDC    string      `xml:"xmlns:dc,attr"`
	Identifier dcElement   `xml:"dc:identifier"`
	Title      dcElement   `xml:"dc:title"`
	Language   dcElement   `xml:"dc:language"`
	Creator    []dcElement `xml:"dc:creator"`
	Date       *dcElement  `xml:"dc:date,omitempty"`
	Meta       []opfMeta   `xml:"meta"`
}

type dcElement struct {
	ID      string `xml:"id,attr,omitempty"`
	Content string `xml:",chardata"`
}

type opfMeta struct {
	ID       string `xml:"id,attr,omitempty"`
	Property string `xml:"property,attr,omitempty"`
	Refines  string `xml:"refines,attr,omitempty"`
	Name     string `xml:"name,attr,omitempty"`    // EPUB 2 style, read by older readers
	Content  string `xml:"content,attr,omitempty"` // EPUB 2 style
	Value    string `xml:",chardata"`
}

type opfManifest struct {
	Items []opfItem `xml:"item"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr,omitempty"`
}

type opfSpine struct {
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef string `xml:"idref,attr"`
}

// packageDocument renders metadata.opf. The caller holds e.mu.
func (e *Epub) packageDocument(meta Metadata) ([]byte, error) {
	pkg := opfPackage{
		Xmlns:            opfNamespace,
		Version:          "3.0",
		UniqueIdentifier: "uid",
		Prefix:           opfPrefixes,
		Metadata:         buildMetadata(meta, e.newID(), e.now()),
		Manifest:         buildManifest(e.manifest),
		Spine:            buildSpine(e.spine),
	}

	// Point EPUB 2 readers at the cover image.
	for _, m := range e.manifest {
		if hasProperty(m.Properties, PropertyCoverImage) {
			pkg.Metadata.Meta = append(pkg.Metadata.Meta, opfMeta{Name: "cover", Content: m.ID})
			break
		}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(pkg); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func buildMetadata(meta Metadata, id string, modified time.Time) opfMetadata {
	m := opfMetadata{
		XmlnsDC:    dcNamespace,
		Identifier: dcElement{ID: "uid", Content: id},
		Title:      dcElement{Content: meta.Title},
		Language:   dcElement{Content: meta.Language},
	}

	for i, author := range meta.Authors {
		m.Creator = append(m.Creator, dcElement{ID: "creator" + strconv.Itoa(i), Content: author})
	}

	if !meta.PublishDate.IsZero() {
		m.Date = &dcElement{Content: FormatTimestamp(meta.PublishDate)}
	}

	m.Meta = append(m.Meta, opfMeta{Property: "dcterms:modified", Value: FormatTimestamp(modified)})

	if s := meta.Series; s != nil {
		number := strconv.Itoa(s.Number)
		m.Meta = append(m.Meta,
			opfMeta{ID: "series", Property: "belongs-to-collection", Value: s.Name},
			opfMeta{Refines: "#series", Property: "collection-type", Value: "series"},
			opfMeta{Refines: "#series", Property: "group-position", Value: number},
			opfMeta{Name: "calibre:series", Content: s.Name},
			opfMeta{Name: "calibre:series_index", Content: number},
		)
	}

	return m
}

func buildManifest(entries []ManifestEntry) opfManifest {
	items := make([]opfItem, 0, len(entries))
	for _, m := range entries {
		items = append(items, opfItem{
			ID:         m.ID,
			Href:       m.Path,
			MediaType:  m.MediaType,
			Properties: strings.Join(m.Properties, " "),
		})
	}
	return opfManifest{Items: items}
}

func buildSpine(ids []string) opfSpine {
	refs := make([]opfItemRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, opfItemRef{IDRef: id})
	}
	return opfSpine{ItemRefs: refs}
}

// FormatTimestamp formats t as an EPUB date: UTC, whole seconds, e.g.
// 2024-03-01T12:30:00Z.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}

func hasProperty(props []string, want string) bool {
	for _, p := range props {
		if p == want {
			return true
		}
	}
	return false
}
