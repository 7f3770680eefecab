package inspect

import (
	"archive/zip"
	"encoding/xml"
	"errors"
)

// Container-related errors.
var (
	ErrNoContainer      = errors.New("inspect: missing META-INF/container.xml")
	ErrInvalidContainer = errors.New("inspect: invalid container.xml")
	ErrNoRootfile       = errors.New("inspect: no rootfile found in container.xml")
)

const packageMediaType = "application/oebps-package+xml"

// containerXML represents the structure of META-INF/container.xml.
type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	Rootfiles []rootfile `xml:"rootfiles>rootfile"`
}

type rootfile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// packagePath reads META-INF/container.xml and returns the path of the
// package document.
func packagePath(zr *zip.Reader) (string, error) {
	data, err := readFile(zr, "META-INF/container.xml")
	if err != nil {
		if errors.Is(err, ErrMissingContent) {
			return "", ErrNoContainer
		}
		return "", err
	}

	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", ErrInvalidContainer
	}

	for _, rf := range c.Rootfiles {
		if rf.FullPath != "" && (rf.MediaType == packageMediaType || rf.MediaType == "") {
			return rf.FullPath, nil
		}
	}
	return "", ErrNoRootfile
}
