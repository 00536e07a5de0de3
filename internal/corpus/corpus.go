// Package corpus turns labeled raw text documents into the TF-IDF feature
// matrices and label structures the classification methods consume. It
// covers loading a directory-per-class corpus, tokenizing and stemming the
// text, fitting a TF-IDF vectorizer, and splitting documents into the four
// fixed splits.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Document is one labeled text sample.
type Document struct {
	Text  string
	Label string
}

// LoadDirectory reads a corpus laid out as one subdirectory per class, each
// containing plain-text document files. The subdirectory name is the class
// label.
func LoadDirectory(root string) ([]Document, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		label := entry.Name()

		files, err := os.ReadDir(filepath.Join(root, label))
		if err != nil {
			return nil, fmt.Errorf("failed to read class directory %q: %w", label, err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(root, label, f.Name()))
			if err != nil {
				return nil, fmt.Errorf("failed to read document %q: %w", f.Name(), err)
			}
			text := strings.TrimSpace(string(data))
			if text == "" {
				continue // skip empty documents
			}
			docs = append(docs, Document{Text: text, Label: label})
		}
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found under %s", root)
	}
	return docs, nil
}

// ClassNames returns the sorted distinct labels of a document set.
func ClassNames(docs []Document) []string {
	seen := make(map[string]bool)
	var names []string
	for _, d := range docs {
		if !seen[d.Label] {
			seen[d.Label] = true
			names = append(names, d.Label)
		}
	}
	sort.Strings(names)
	return names
}
