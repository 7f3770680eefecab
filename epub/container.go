package epub

import (
	"bytes"
	"encoding/xml"
)

const containerNamespace = "urn:oasis:names:tc:opendocument:xmlns:container"

// containerXML is the structure of META-INF/container.xml.
type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	Version   string     `xml:"version,attr"`
	Xmlns     string     `xml:"xmlns,attr"`
	Rootfiles []rootfile `xml:"rootfiles>rootfile"`
}

type rootfile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// containerDocument renders the container file pointing at the package
// document.
func containerDocument(packagePath string) ([]byte, error) {
	c := containerXML{
		Version: "1.0",
		Xmlns:   containerNamespace,
		Rootfiles: []rootfile{
			{FullPath: packagePath, MediaType: MediaTypePackage},
		},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
