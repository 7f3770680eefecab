package epub

// PendingFile is a registered file whose content is not known yet. Its id,
// path and spine position are fixed at registration; Fill supplies the
// content exactly once.
type PendingFile struct {
	FileHandle
	epub *Epub
}

// Fill writes content to the path reserved for this file. A second call
// returns ErrAlreadyFilled and leaves the archive unchanged.
func (p *PendingFile) Fill(content []byte) error {
	return p.epub.fill(p.ID, content)
}

// FillString is Fill for text content.
func (p *PendingFile) FillString(content string) error {
	return p.Fill([]byte(content))
}
