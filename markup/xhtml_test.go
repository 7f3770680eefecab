package markup

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "adds declaration and namespace",
			input: "<p>text</p>",
			want: []string{
				`<?xml version="1.0" encoding="UTF-8"?>` + "\n",
				`<html xmlns="http://www.w3.org/1999/xhtml"><head></head><body><p>text</p></body></html>`,
			},
		},
		{
			name:  "closes void elements",
			input: `<p>a<br>b<img src="x.png" alt="x"></p>`,
			want:  []string{`<p>a<br/>b<img src="x.png" alt="x"/></p>`},
		},
		{
			name:  "closes open elements",
			input: "<ul><li>one<li>two</ul>",
			want:  []string{"<ul><li>one</li><li>two</li></ul>"},
		},
		{
			name:  "escapes text and attributes",
			input: `<p title="a &quot;b&quot; &amp; c">1 &lt; 2 &amp;&amp; 3</p>`,
			want:  []string{`<p title="a &quot;b&quot; &amp; c">1 &lt; 2 &amp;&amp; 3</p>`},
		},
		{
			name:  "keeps doctype",
			input: "<!DOCTYPE html><html><body></body></html>",
			want:  []string{"<!DOCTYPE html>\n<html"},
		},
		{
			name:  "rewrites double hyphens in comments",
			input: "<p><!-- a -- b --></p>",
			want:  []string{"<!-- a - - b -->"},
		},
		{
			name:  "composes text to NFC",
			input: "<p>Cafe\u0301</p>",
			want:  []string{"<p>Caf\u00e9</p>"},
		},
		{
			name:  "drops invalid attribute names",
			input: `<p "quoted"="x" class="ok">t</p>`,
			want:  []string{`<p class="ok">t</p>`},
		},
		{
			name:  "declares known prefixes",
			input: `<section epub:type="chapter"><p epub:type="z3998:fiction">t</p></section>`,
			want: []string{
				`<section xmlns:epub="http://www.idpf.org/2007/ops" epub:type="chapter">`,
				`<p epub:type="z3998:fiction">t</p>`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("Normalize(%q) missing %q\ngot: %s", tt.input, want, got)
				}
			}
		})
	}
}

func TestNormalizeDropsXMLDeclaration(t *testing.T) {
	got, err := Normalize(`<?xml version="1.0" encoding="UTF-8"?><p>x</p>`)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if n := strings.Count(got, "<?xml"); n != 1 {
		t.Errorf("got %d XML declarations, want 1:\n%s", n, got)
	}
	if strings.Contains(got, "<!--") {
		t.Errorf("declaration kept as a comment:\n%s", got)
	}
}

func TestNormalizeSVG(t *testing.T) {
	input := `<div><svg xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 10 20">` +
		`<image width="10" height="20" xlink:href="cover.png"></image></svg></div>`

	got, err := Normalize(input)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 10 20">`,
		`<image width="10" height="20" xlink:href="cover.png"/>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Normalize missing %q\ngot: %s", want, got)
		}
	}
}

func TestNormalizeMath(t *testing.T) {
	got, err := Normalize("<p><math><mi>x</mi></math></p>")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !strings.Contains(got, `<math xmlns="http://www.w3.org/1998/Math/MathML"><mi>x</mi></math>`) {
		t.Errorf("math namespace not declared:\n%s", got)
	}
}

// wellFormed reads every token of doc with a strict XML decoder.
func wellFormed(t *testing.T, doc string) {
	t.Helper()
	d := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := d.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			t.Fatalf("output is not well-formed XML: %v\n%s", err, doc)
		}
	}
}

func TestNormalizeWellFormed(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   []string
		absent []string
	}{
		{
			name:  "control characters in text",
			input: "<p>a\x01b\x1fc</p>",
			want:  []string{"<p>abc</p>"},
		},
		{
			name:  "invalid utf-8",
			input: "<p>caf\xe9</p>",
			want:  []string{"<p>caf\uFFFD</p>"},
		},
		{
			name:  "control characters in attributes",
			input: "<p title=\"a\vb\" class=\"c\xffd\">t</p>",
			want:  []string{`title="ab"`, "class=\"c\uFFFDd\""},
		},
		{
			name:   "invalid element name",
			input:  `<p><a"b>x</a"b></p>`,
			want:   []string{"x"},
			absent: []string{`a"b`},
		},
		{
			name:   "undeclared element prefix",
			input:  "<p>one<o:p></o:p></p><p>two<st1:place>Paris</st1:place></p>",
			want:   []string{"<p>one</p>", "<p>twoParis</p>"},
			absent: []string{"o:p", "st1:"},
		},
		{
			name:   "undeclared attribute prefix",
			input:  `<p o:style="x" class="c">t</p>`,
			want:   []string{`<p class="c">t</p>`},
			absent: []string{"o:style"},
		},
		{
			name:  "declared element prefix",
			input: `<div xmlns:o="urn:schemas-microsoft-com:office:office"><o:p>t</o:p></div>`,
			want:  []string{`<o:p>t</o:p>`},
		},
		{
			name:   "doubly prefixed attribute",
			input:  `<p a:b:c="x">t</p>`,
			absent: []string{"a:b:c"},
		},
		{
			name:  "comment ending in a hyphen",
			input: "<p><!--x---></p>",
			want:  []string{"<!--x- -->"},
		},
		{
			name:  "comment with a run of hyphens",
			input: "<p><!--a---b--></p>",
			want:  []string{"<!--a- - -b-->"},
		},
		{
			name:  "control characters in comments",
			input: "<p><!--a\x02b--></p>",
			want:  []string{"<!--ab-->"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			wellFormed(t, got)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("Normalize(%q) missing %q\ngot: %s", tt.input, want, got)
				}
			}
			for _, bad := range tt.absent {
				if strings.Contains(got, bad) {
					t.Errorf("Normalize(%q) kept %q\ngot: %s", tt.input, bad, got)
				}
			}
		})
	}
}
