package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/quire/epub"
	"github.com/tsawler/quire/inspect"
)

func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.epub>",
		Short: "Print the structure of an EPUB archive",
		Long:  "Print the metadata, archive entries, reading order, landmarks and table of contents of an EPUB archive.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := inspect.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer r.Close()

			loggerFromContext(cmd.Context()).Debug("Opened archive", "path", args[0], "package", r.Package().Path)
			return printPackage(cmd.OutOrStdout(), r)
		},
	}
}

func printPackage(w io.Writer, r *inspect.Reader) error {
	pkg := r.Package()
	meta := pkg.Metadata

	metaRows := [][]string{
		{"Title", meta.Title},
		{"Creators", strings.Join(meta.Creator, ", ")},
		{"Language", meta.Language},
		{"Identifier", meta.Identifier},
		{"Version", pkg.Version},
	}
	if meta.Date != "" {
		metaRows = append(metaRows, []string{"Date", meta.Date})
	}
	if !meta.Modified.IsZero() {
		metaRows = append(metaRows, []string{"Modified", epub.FormatTimestamp(meta.Modified)})
	}
	if meta.Series != "" {
		metaRows = append(metaRows, []string{"Series", strings.TrimSpace(meta.Series + " " + meta.SeriesIndex)})
	}
	if meta.Cover != "" {
		metaRows = append(metaRows, []string{"Cover", meta.Cover})
	}

	var entryRows [][]string
	for _, e := range r.Entries() {
		method := "deflated"
		if e.Stored {
			method = "stored"
		}
		entryRows = append(entryRows, []string{e.Name, method, strconv.FormatUint(e.Size, 10)})
	}

	var spineRows [][]string
	for i, id := range pkg.Spine {
		item, _ := pkg.Item(id)
		spineRows = append(spineRows, []string{strconv.Itoa(i + 1), id, item.Href, strings.Join(item.Properties, " ")})
	}

	var landmarkRows [][]string
	for _, l := range r.Landmarks() {
		landmarkRows = append(landmarkRows, []string{l.Type, l.Title, l.Href})
	}

	var tocRows [][]string
	appendTOC(&tocRows, r.TableOfContents(), 0)

	report := renderReport(
		reportSection{title: "Metadata", headers: []string{"Field", "Value"}, rows: metaRows},
		reportSection{title: "Entries", headers: []string{"Name", "Method", "Size"}, numeric: []int{2}, rows: entryRows, counted: "entries"},
		reportSection{title: "Spine", headers: []string{"#", "ID", "Href", "Properties"}, numeric: []int{0}, rows: spineRows, counted: "pages"},
		reportSection{title: "Landmarks", headers: []string{"Type", "Label", "Href"}, rows: landmarkRows},
		reportSection{title: "Contents", headers: []string{"Entry", "Href"}, rows: tocRows},
	)
	_, err := fmt.Fprintln(w, report)
	return err
}

func appendTOC(rows *[][]string, entries []inspect.TOCEntry, depth int) {
	for _, e := range entries {
		*rows = append(*rows, []string{strings.Repeat("  ", depth) + e.Title, e.Href})
		appendTOC(rows, e.Children, depth+1)
	}
}
