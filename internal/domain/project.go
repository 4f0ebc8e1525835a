package domain

import (
	"path/filepath"
	"strings"
)

// ProjectFile is a project document found during a crawl
type ProjectFile struct {
	Name string // File name without extension
	Path string
}

// NewProjectFile builds a ProjectFile from its path
func NewProjectFile(path string) ProjectFile {
	base := filepath.Base(path)
	return ProjectFile{
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
		Path: path,
	}
}
