package extractor

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("failed to create document.xml: %v", err)
	}

	var doc bytes.Buffer
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t>`)
		doc.WriteString(p)
		doc.WriteString(`</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)

	if _, err := w.Write(doc.Bytes()); err != nil {
		t.Fatalf("failed to write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}

	return buf.Bytes()
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"simple", "hello world  foo", 3},
		{"empty", "", 0},
		{"whitespace only", "  \t\n ", 0},
		{"newlines between words", "a\nb\nc", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountWords(tt.text); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestDecodeText(t *testing.T) {
	if got := DecodeText([]byte("hello world")); got != "hello world" {
		t.Errorf("plain ASCII: got %q", got)
	}

	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("one two")...)
	if got := DecodeText(bom); got != "one two" {
		t.Errorf("UTF-8 BOM: got %q", got)
	}

	// UTF-16LE with BOM: "a b"
	utf16le := []byte{0xFF, 0xFE, 'a', 0x00, ' ', 0x00, 'b', 0x00}
	if got := DecodeText(utf16le); got != "a b" {
		t.Errorf("UTF-16LE: got %q", got)
	}

	// Invalid UTF-8 must still decode rather than fail.
	latin1 := []byte{'c', 0xE9, ' ', 'd'} // "cé d" in Latin-1
	got := DecodeText(latin1)
	if CountWords(got) != 2 {
		t.Errorf("latin-1 fallback: got %q, want 2 words", got)
	}
}

func TestExtractDOCX(t *testing.T) {
	data := buildDOCX(t, "a b", "c")

	text, err := ExtractDOCX(data)
	if err != nil {
		t.Fatalf("ExtractDOCX returned error: %v", err)
	}

	if got := CountWords(text); got != 3 {
		t.Errorf("word count = %d, want 3", got)
	}
}

func TestExtractDOCXEmptyDocument(t *testing.T) {
	data := buildDOCX(t)

	text, err := ExtractDOCX(data)
	if err != nil {
		t.Fatalf("ExtractDOCX returned error: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestExtractDOCXCorrupt(t *testing.T) {
	if _, err := ExtractDOCX([]byte("not a zip archive")); err == nil {
		t.Error("expected error for corrupt container")
	}
}

func TestExtractDOCXMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/styles.xml")
	w.Write([]byte("<styles/>"))
	zw.Close()

	if _, err := ExtractDOCX(buf.Bytes()); err == nil {
		t.Error("expected error when document.xml is absent")
	}
}
