// Package emit wraps synthesized fragments into schema documents and
// turns them into file operations.
package emit

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/simonhull/firebird-suite/quill/internal/fragment"
	"github.com/simonhull/firebird-suite/quill/internal/generator"
	"github.com/simonhull/firebird-suite/quill/internal/logger"
)

// Draft2020 is the default $schema of emitted documents.
const Draft2020 = "https://json-schema.org/draft/2020-12/schema"

// Suffix is appended to a basename to form the file name.
const Suffix = ".schema.json"

// ErrInvalidBasename is returned for empty basenames or ones containing a path.
var ErrInvalidBasename = errors.New("invalid basename")

// Options configures emitted documents.
type Options struct {
	BaseURI string // prefix of every $id; "" yields "/<basename>"
	Draft   string // $schema; defaults to Draft2020
}

// Document is one emitted schema.
type Document struct {
	Basename string
	Schema   *fragment.Object
}

// FileName returns the document's file name.
func (d Document) FileName() string {
	return FileName(d.Basename)
}

// FileName returns "<basename>.schema.json".
func FileName(basename string) string {
	return basename + Suffix
}

// Emitter collects the documents of one run in emission order.
type Emitter struct {
	opts  Options
	log   logger.Logger
	docs  []Document
	index map[string]int
}

// New creates an emitter. A nil logger discards output.
func New(opts Options, log logger.Logger) *Emitter {
	if opts.Draft == "" {
		opts.Draft = Draft2020
	}
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Emitter{
		opts:  opts,
		log:   log,
		index: make(map[string]int),
	}
}

// Emit builds the document for basename: the $id/$schema header, merged
// with core, then with override when given.
//
// Emitting a basename twice replaces the earlier document and logs a warning.
func (e *Emitter) Emit(basename string, core, override *fragment.Object) (*fragment.Object, error) {
	if basename == "" || strings.ContainsAny(basename, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBasename, basename)
	}

	e.log.Info("Generating "+FileName(basename), logger.F("basename", basename))

	doc := fragment.Obj(
		"$id", e.ID(basename),
		"$schema", e.opts.Draft,
	)
	doc = fragment.MergeObjects(doc, core)
	if override != nil {
		doc = fragment.MergeObjects(doc, override)
	}

	if i, ok := e.index[basename]; ok {
		e.log.Warn("basename emitted twice, keeping the last document", logger.F("basename", basename))
		e.docs[i].Schema = doc
		return doc, nil
	}

	e.index[basename] = len(e.docs)
	e.docs = append(e.docs, Document{Basename: basename, Schema: doc})
	return doc, nil
}

// ID returns the $id for basename.
func (e *Emitter) ID(basename string) string {
	return strings.TrimSuffix(e.opts.BaseURI, "/") + "/" + basename
}

// Documents returns the emitted documents in first-emission order.
func (e *Emitter) Documents() []Document {
	docs := make([]Document, len(e.docs))
	copy(docs, e.docs)
	return docs
}

// Document returns the document emitted under basename.
func (e *Emitter) Document(basename string) (*fragment.Object, bool) {
	i, ok := e.index[basename]
	if !ok {
		return nil, false
	}
	return e.docs[i].Schema, true
}

// Operations serializes every document into a write under outDir. With
// clean set, other *.schema.json files in outDir are removed.
func (e *Emitter) Operations(outDir string, clean bool) ([]generator.Operation, error) {
	ops := make([]generator.Operation, 0, len(e.docs))
	paths := make([]string, 0, len(e.docs))

	for _, doc := range e.docs {
		content, err := fragment.Marshal(doc.Schema)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", doc.FileName(), err)
		}
		path := filepath.Join(outDir, doc.FileName())
		paths = append(paths, path)
		ops = append(ops, &generator.WriteFileOp{Path: path, Content: content, Mode: 0644})
	}

	if clean {
		stale, err := generator.StaleFiles(outDir, "*"+Suffix, paths)
		if err != nil {
			return nil, err
		}
		for _, path := range stale {
			ops = append(ops, &generator.RemoveFileOp{Path: path})
		}
	}

	return ops, nil
}
