package lexicon

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
	"github.com/prangggshu/legal-chatbot/internal/core/retrieval"
)

// Load returns the built-in lexicon overlaid with the tables in the YAML file
// at path. An empty path yields the built-in lexicon.
func Load(path string) (retrieval.Lexicon, error) {
	base := retrieval.DefaultLexicon()
	if strings.TrimSpace(path) == "" {
		return base, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return retrieval.Lexicon{}, fmt.Errorf("read lexicon file: %w", err)
	}
	overlay, err := Parse(raw)
	if err != nil {
		return retrieval.Lexicon{}, err
	}
	return base.Merge(overlay), nil
}

func Parse(raw []byte) (retrieval.Lexicon, error) {
	var lex retrieval.Lexicon
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&lex); err != nil && !errors.Is(err, io.EOF) {
		return retrieval.Lexicon{}, domain.WrapError(domain.ErrInvalidInput, "parse lexicon", err)
	}
	return lex, nil
}
