// Package extract provides text extraction from source material.
//
// Each format lives in its own subpackage implementing driven.Extractor;
// the Registry in this package resolves extractors by MIME type. Formats
// covered: plain text, Markdown, HTML, DOCX and PDF (via pdftotext).
package extract
