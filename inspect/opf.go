package inspect

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"strings"
	"time"
)

// Package document errors.
var (
	ErrNoOPF      = errors.New("inspect: missing package document")
	ErrInvalidOPF = errors.New("inspect: invalid package document")
)

// opfPackage matches elements by local name, so dc: prefixed metadata is
// read whatever prefix the document declares.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Items    []opfItem   `xml:"manifest>item"`
	ItemRefs []opfRef    `xml:"spine>itemref"`
}

type opfMetadata struct {
	Title      []string  `xml:"title"`
	Creator    []string  `xml:"creator"`
	Language   []string  `xml:"language"`
	Identifier []string  `xml:"identifier"`
	Date       []string  `xml:"date"`
	Meta       []opfMeta `xml:"meta"`
}

type opfMeta struct {
	Property string `xml:"property,attr"`
	Refines  string `xml:"refines,attr"`
	Name     string `xml:"name,attr"`
	Content  string `xml:"content,attr"`
	Value    string `xml:",chardata"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfRef struct {
	IDRef string `xml:"idref,attr"`
}

func parsePackage(zr *zip.Reader, path string) (*Package, error) {
	data, err := readFile(zr, path)
	if err != nil {
		if errors.Is(err, ErrMissingContent) {
			return nil, ErrNoOPF
		}
		return nil, err
	}

	var opf opfPackage
	if err := xml.Unmarshal(data, &opf); err != nil {
		return nil, ErrInvalidOPF
	}

	pkg := &Package{
		Path:     path,
		Version:  opf.Version,
		Metadata: convertMetadata(&opf.Metadata),
		Manifest: make([]ManifestItem, 0, len(opf.Items)),
		Spine:    make([]string, 0, len(opf.ItemRefs)),
	}
	for _, item := range opf.Items {
		pkg.Manifest = append(pkg.Manifest, ManifestItem{
			ID:         item.ID,
			Href:       item.Href,
			MediaType:  item.MediaType,
			Properties: strings.Fields(item.Properties),
		})
	}
	for _, ref := range opf.ItemRefs {
		pkg.Spine = append(pkg.Spine, ref.IDRef)
	}

	return pkg, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func convertMetadata(m *opfMetadata) Metadata {
	meta := Metadata{
		Title:      first(m.Title),
		Language:   first(m.Language),
		Identifier: first(m.Identifier),
		Date:       first(m.Date),
	}

	for _, c := range m.Creator {
		if s := strings.TrimSpace(c); s != "" {
			meta.Creator = append(meta.Creator, s)
		}
	}

	for _, mt := range m.Meta {
		value := strings.TrimSpace(mt.Value)
		switch {
		case mt.Property == "dcterms:modified":
			if t, err := time.Parse(time.RFC3339, value); err == nil {
				meta.Modified = t
			}
		case mt.Property == "belongs-to-collection" && meta.Series == "":
			meta.Series = value
		case mt.Property == "group-position" && meta.SeriesIndex == "":
			meta.SeriesIndex = value
		case mt.Name == "calibre:series" && meta.Series == "":
			meta.Series = mt.Content
		case mt.Name == "calibre:series_index" && meta.SeriesIndex == "":
			meta.SeriesIndex = mt.Content
		case mt.Name == "cover":
			meta.Cover = mt.Content
		}
	}

	return meta
}
