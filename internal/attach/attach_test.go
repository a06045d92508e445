// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package attach

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF")

func TestFromBytes_ValidPDF(t *testing.T) {
	doc, err := FromBytes("notes.pdf", samplePDF)
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	if doc.Name != "notes.pdf" {
		t.Errorf("Name = %q", doc.Name)
	}
	if doc.Size != int64(len(samplePDF)) {
		t.Errorf("Size = %d, want %d", doc.Size, len(samplePDF))
	}
	if !strings.HasPrefix(doc.DataURI, "data:application/pdf;base64,") {
		t.Errorf("DataURI missing scheme: %q", doc.DataURI[:40])
	}
}

func TestFromBytes_RejectsTextFile(t *testing.T) {
	_, err := FromBytes("notes.txt", []byte("just some plain text"))
	if !errors.Is(err, ErrInvalidType) {
		t.Errorf("Expected ErrInvalidType, got %v", err)
	}
}

func TestFromBytes_RejectsRenamedTextFile(t *testing.T) {
	// Wrong header, right extension.
	_, err := FromBytes("sneaky.pdf", []byte("just some plain text"))
	if !errors.Is(err, ErrInvalidType) {
		t.Errorf("Expected ErrInvalidType, got %v", err)
	}
}

func TestFromBytes_RejectsEmpty(t *testing.T) {
	_, err := FromBytes("empty.pdf", nil)
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("Expected ErrEmptyFile, got %v", err)
	}
}

func TestFromBytes_RejectsOversized(t *testing.T) {
	big := make([]byte, MaxDocumentSize+1)
	copy(big, samplePDF)
	_, err := FromBytes("big.pdf", big)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}
}

func TestFromBytes_CaseInsensitiveExtension(t *testing.T) {
	if _, err := FromBytes("NOTES.PDF", samplePDF); err != nil {
		t.Errorf("Uppercase extension should be accepted: %v", err)
	}
}

func TestLoadPDF(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "doc.pdf")
	if err := os.WriteFile(path, samplePDF, 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadPDF(path)
	if err != nil {
		t.Fatalf("LoadPDF failed: %v", err)
	}
	if doc.Name != "doc.pdf" {
		t.Errorf("Name = %q, want base name only", doc.Name)
	}
}

func TestLoadPDF_MissingFile(t *testing.T) {
	_, err := LoadPDF(filepath.Join(t.TempDir(), "nope.pdf"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestDataURI_RoundTrip(t *testing.T) {
	uri := EncodeDataURI(samplePDF)

	data, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("DecodeDataURI failed: %v", err)
	}
	if string(data) != string(samplePDF) {
		t.Error("Round trip altered content")
	}
}

func TestBase64Payload(t *testing.T) {
	uri := EncodeDataURI(samplePDF)
	payload, err := Base64Payload(uri)
	if err != nil {
		t.Fatalf("Base64Payload failed: %v", err)
	}
	if strings.Contains(payload, ",") || strings.HasPrefix(payload, "data:") {
		t.Errorf("Payload still carries scheme: %q", payload[:20])
	}
}

func TestBase64Payload_WrongScheme(t *testing.T) {
	_, err := Base64Payload("data:text/plain;base64,aGVsbG8=")
	if !errors.Is(err, ErrInvalidType) {
		t.Errorf("Expected ErrInvalidType, got %v", err)
	}
}
