// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attach loads and validates the PDF documents attached to tutoring
// sessions. Only PDFs are accepted; everything else is rejected before a
// session is ever created.
package attach

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/morganforge/pdftutor/internal/model"
)

// MaxDocumentSize caps attached documents at 20MB. The whole file travels
// base64-encoded with every question, so oversized documents would blow the
// request budget of the tutor backend.
const MaxDocumentSize = 20 * 1024 * 1024

// pdfMagic is the header every well-formed PDF starts with.
const pdfMagic = "%PDF-"

// dataURIPrefix is the scheme prefix for the encoded document payload.
const dataURIPrefix = "data:application/pdf;base64,"

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidType indicates the file is not a PDF.
	ErrInvalidType = errors.New("file is not a PDF")

	// ErrTooLarge indicates the file exceeds MaxDocumentSize.
	ErrTooLarge = errors.New("file exceeds maximum document size")

	// ErrEmptyFile indicates the file has no content.
	ErrEmptyFile = errors.New("file is empty")
)

// =============================================================================
// LOADING
// =============================================================================

// LoadPDF reads a file from disk, validates that it is a PDF, and returns a
// Document carrying the base64 data URI. Validation checks both the file
// extension and the %PDF- header so a renamed text file is still rejected.
func LoadPDF(path string) (model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to read document: %w", err)
	}
	return FromBytes(filepath.Base(path), data)
}

// FromBytes validates raw file content and builds a Document from it.
func FromBytes(name string, data []byte) (model.Document, error) {
	if len(data) == 0 {
		return model.Document{}, fmt.Errorf("%w: %s", ErrEmptyFile, name)
	}
	if int64(len(data)) > MaxDocumentSize {
		return model.Document{}, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, name, len(data))
	}
	if err := validate(name, data); err != nil {
		return model.Document{}, err
	}

	return model.Document{
		Name:    name,
		DataURI: EncodeDataURI(data),
		Size:    int64(len(data)),
	}, nil
}

// validate rejects anything that is not a PDF by extension or header.
func validate(name string, data []byte) error {
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return fmt.Errorf("%w: %s has extension %q", ErrInvalidType, name, filepath.Ext(name))
	}
	if !strings.HasPrefix(string(data[:min(len(data), len(pdfMagic))]), pdfMagic) {
		return fmt.Errorf("%w: %s does not start with %s header", ErrInvalidType, name, pdfMagic)
	}
	return nil
}

// =============================================================================
// DATA URI
// =============================================================================

// EncodeDataURI wraps raw PDF bytes in a base64 data URI.
func EncodeDataURI(data []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI extracts the raw PDF bytes from a data URI produced by
// EncodeDataURI.
func DecodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, dataURIPrefix) {
		return nil, fmt.Errorf("%w: unexpected data URI scheme", ErrInvalidType)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, dataURIPrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI: %w", err)
	}
	return data, nil
}

// Base64Payload strips the data URI scheme and returns just the base64
// portion, which is what the generateContent API wants for inline data.
func Base64Payload(uri string) (string, error) {
	if !strings.HasPrefix(uri, dataURIPrefix) {
		return "", fmt.Errorf("%w: unexpected data URI scheme", ErrInvalidType)
	}
	return strings.TrimPrefix(uri, dataURIPrefix), nil
}
