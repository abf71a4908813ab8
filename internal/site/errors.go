package site

import "errors"

var (
	ErrContentDirMissing = errors.New("content directory not found")
	ErrThemeDirMissing   = errors.New("theme directory not found")
	ErrDuplicateMarker   = errors.New("section already has a marker document")
	ErrReservedSection   = errors.New("content directory uses a reserved section name")
	ErrOutputEscape      = errors.New("output path escapes the output directory")
)
