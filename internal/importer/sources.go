// Package importer implements the multi-step import wizard: a source
// document (or search query) is parsed by the backend, the candidates
// are normalized into one staging shape, reviewed and priced by the
// operator, and finally submitted as an import execution request.
package importer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Source identifies where import candidates come from.
type Source string

const (
	SourceInvoice        Source = "invoice"
	SourceEmail          Source = "email"
	SourceExcel          Source = "excel"
	SourceMayoristaPlata Source = "mayorista-plata"
	SourceSearch         Source = "search"
)

// AllSources lists the selectable sources in display order.
var AllSources = []Source{SourceInvoice, SourceEmail, SourceExcel, SourceMayoristaPlata, SourceSearch}

const megabyte = 1 << 20

type sourceSpec struct {
	label     string
	extension string
	maxSize   int64
	// needsSupplier marks sources whose documents carry no supplier
	// identity of their own.
	needsSupplier bool
	fileBacked    bool
}

var sourceSpecs = map[Source]sourceSpec{
	SourceInvoice:        {label: "Factura PDF", extension: ".pdf", maxSize: 10 * megabyte, fileBacked: true},
	SourceEmail:          {label: "Email de envío", extension: ".eml", maxSize: 5 * megabyte, fileBacked: true},
	SourceExcel:          {label: "Planilla Excel", extension: ".xlsx", maxSize: 5 * megabyte, needsSupplier: true, fileBacked: true},
	SourceMayoristaPlata: {label: "Mayorista Plata PDF", extension: ".pdf", maxSize: 10 * megabyte, fileBacked: true},
	SourceSearch:         {label: "Búsqueda", fileBacked: false},
}

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	_, ok := sourceSpecs[s]
	return ok
}

// Label returns the display name of the source.
func (s Source) Label() string {
	return sourceSpecs[s].label
}

// FileBacked reports whether the source uploads a document. File-backed
// sources attach the original file again at execution time so the
// backend can persist a copy.
func (s Source) FileBacked() bool {
	return sourceSpecs[s].fileBacked
}

// NeedsSupplier reports whether a target supplier must be chosen before
// the upload control is enabled.
func (s Source) NeedsSupplier() bool {
	return sourceSpecs[s].needsSupplier
}

// AcceptFile validates a candidate upload against the source's accepted
// extension and maximum size.
func (s Source) AcceptFile(filename string, size int64) error {
	spec, ok := sourceSpecs[s]
	if !ok {
		return fmt.Errorf("unknown import source %q", s)
	}
	if !spec.fileBacked {
		return fmt.Errorf("source %s does not accept files", s)
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != spec.extension {
		return fmt.Errorf("se esperaba un archivo %s, llegó %q", spec.extension, filename)
	}
	if size <= 0 {
		return fmt.Errorf("el archivo está vacío")
	}
	if size > spec.maxSize {
		return fmt.Errorf("el archivo supera el máximo de %d MB", spec.maxSize/megabyte)
	}
	return nil
}
