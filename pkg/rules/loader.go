package rules

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Parse decodes every YAML document in the reader
func Parse(reader io.Reader) ([]Document, error) {
	var documents []Document

	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	for {
		var document Document
		err := decoder.Decode(&document)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		documents = append(documents, document)
	}

	return documents, nil
}

// LoadDirectory walks directory for .yaml files and builds a Config out of
// all the documents found.
func LoadDirectory(directory string) (*Config, error) {
	var documents []Document

	err := filepath.Walk(directory,
		func(path string, fileInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if fileInfo.IsDir() {
				return nil
			}

			extension := filepath.Ext(path)
			if extension != ".yaml" && extension != ".yml" {
				return nil
			}

			log.Debug().Str("path", path).Msg("Loading rules file")

			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()

			fileDocuments, err := Parse(file)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}

			documents = append(documents, fileDocuments...)

			return nil
		})
	if err != nil {
		return nil, err
	}

	config, err := Build(documents...)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("lines", len(config.Lines)).
		Int("directions", len(config.Directions)).
		Int("contractions", len(config.Contractions)).
		Msg("Loaded rules")

	return config, nil
}
