package catalog

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/wildswap/core/errors"
)

// catalogGrammar is the participle grammar for catalog text files.
//
//	# comment
//	bucket 1-5 { SPECIES_PIKACHU SPECIES_EEVEE }
//	bucket 6-100 {
//	  SPECIES_DITTO, SPECIES_SNORLAX
//	}
//
//nolint:govet // participle grammar tags are not standard struct tags
type catalogGrammar struct {
	Buckets []*bucketGrammar `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type bucketGrammar struct {
	Min        int      `"bucket" @Int`
	Max        int      `"-" @Int`
	Candidates []string `"{" ( @Ident ","? )* "}"`
}

var catalogLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[-{},]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var catalogParser = participle.MustBuild[catalogGrammar](
	participle.Lexer(catalogLexer),
	participle.Elide("Whitespace", "Comment"),
)

// yamlCatalog is the YAML shape of a catalog file.
type yamlCatalog struct {
	Buckets []yamlBucket `yaml:"buckets"`
}

type yamlBucket struct {
	Min        int      `yaml:"min"`
	Max        int      `yaml:"max"`
	Candidates []string `yaml:"candidates"`
}

// Load reads and validates a catalog file. Files ending in .yaml or .yml are
// decoded as YAML; anything else is read as catalog text.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read catalog", path, err)
	}
	return Parse(path, data)
}

// Parse decodes catalog data. name selects the syntax by extension and is used
// in error messages.
func Parse(name string, data []byte) (*Catalog, error) {
	var (
		entries []Entry
		err     error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		entries, err = parseYAML(name, data)
	default:
		entries, err = parseText(name, data)
	}
	if err != nil {
		return nil, err
	}

	cat, err := New(entries)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", name)
	}
	return cat, nil
}

func parseText(name string, data []byte) ([]Entry, error) {
	parsed, err := catalogParser.ParseBytes(name, data)
	if err != nil {
		return nil, errors.NewParse("catalog", name, err.Error())
	}

	entries := make([]Entry, 0, len(parsed.Buckets))
	for _, b := range parsed.Buckets {
		entries = append(entries, Entry{
			Bucket:     Bucket{Min: b.Min, Max: b.Max},
			Candidates: b.Candidates,
		})
	}
	return entries, nil
}

func parseYAML(name string, data []byte) ([]Entry, error) {
	var doc yamlCatalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.NewParse("YAML catalog", name, err.Error())
	}

	entries := make([]Entry, 0, len(doc.Buckets))
	for _, b := range doc.Buckets {
		entries = append(entries, Entry{
			Bucket:     Bucket{Min: b.Min, Max: b.Max},
			Candidates: b.Candidates,
		})
	}
	return entries, nil
}
