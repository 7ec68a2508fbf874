// Package validate holds the acceptance policy for upload batches and
// the readiness gate queries must pass.
package validate

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxFileSize is the per-file ceiling in bytes.
const MaxFileSize = 10 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".eml":  true,
}

// File is the name/size pair the policy judges. Contents are not
// inspected; the service does its own parsing.
type File struct {
	Name string
	Size int64
}

// BatchError rejects a whole upload batch. Both violation lists may
// be populated from a single call: the type check and the size check
// always both run.
type BatchError struct {
	WrongType []string
	Oversized []string
}

func (e *BatchError) Error() string {
	var parts []string
	if len(e.WrongType) > 0 {
		parts = append(parts, fmt.Sprintf("invalid file types: %s (only PDF, DOCX, and EML files are supported)",
			strings.Join(e.WrongType, ", ")))
	}
	if len(e.Oversized) > 0 {
		parts = append(parts, fmt.Sprintf("files too large: %s (maximum size is 10MB per file)",
			strings.Join(e.Oversized, ", ")))
	}
	if len(parts) == 0 {
		return "invalid upload batch"
	}
	return strings.Join(parts, "; ")
}

// Files checks an upload batch against the acceptance policy. A nil
// return means the whole batch is acceptable; any violation rejects
// the batch as a unit, with every offending filename enumerated.
func Files(files []File) *BatchError {
	batchErr := &BatchError{}
	for _, f := range files {
		if !allowedExtensions[strings.ToLower(filepath.Ext(f.Name))] {
			batchErr.WrongType = append(batchErr.WrongType, f.Name)
		}
		if f.Size > MaxFileSize {
			batchErr.Oversized = append(batchErr.Oversized, f.Name)
		}
	}
	if len(batchErr.WrongType) == 0 && len(batchErr.Oversized) == 0 {
		return nil
	}
	return batchErr
}

// CanQuery reports whether a session with the given uploaded files is
// ready to take questions.
func CanQuery(uploadedFiles []string) bool {
	return len(uploadedFiles) > 0
}
