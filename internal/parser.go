package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Dataset is everything a bill file can carry. Payments are optional and only
// feed the stats view.
type Dataset struct {
	Bills    []Bill    `json:"bills"`
	Payments []Payment `json:"payments,omitempty"`
}

// Parser reads a bill file into a Dataset
type Parser interface {
	Parse(path string) (Dataset, error)
}

// ParserFunc is a function that implements Parser
type ParserFunc func(path string) (Dataset, error)

func (f ParserFunc) Parse(path string) (Dataset, error) {
	return f(path)
}

var parsers = map[string]Parser{}

// RegisterParser registers a parser with the given name
func RegisterParser(name string, p Parser) {
	parsers[name] = p
}

// GetParser returns the parser for the given source type
func GetParser(source string) (Parser, error) {
	p, ok := parsers[source]
	if !ok {
		return nil, fmt.Errorf("unknown source type: %s (available: %v)", source, AvailableSources())
	}
	return p, nil
}

// AvailableSources returns the registered source types, sorted
func AvailableSources() []string {
	var sources []string
	for name := range parsers {
		sources = append(sources, name)
	}
	slices.Sort(sources)
	return sources
}

// IsKnownParser returns true if the name is a registered parser
func IsKnownParser(name string) bool {
	_, ok := parsers[name]
	return ok
}

// ParseFileArg splits an optional format prefix off a file argument.
//
//	"xlsx:bills.xlsx"  -> ("xlsx", "bills.xlsx")
//	"bills.json"       -> ("", "bills.json")
//	"C:\bills.xlsx"    -> ("", "C:\bills.xlsx")
func ParseFileArg(arg string) (format, path string) {
	prefix, rest, found := strings.Cut(arg, ":")
	if !found || !IsKnownParser(prefix) {
		return "", arg
	}
	return prefix, rest
}

// SourceForPath picks a parser from an explicit format or the file extension.
func SourceForPath(format, path string) (Parser, error) {
	if format != "" {
		return GetParser(format)
	}
	lower := strings.TrimSuffix(strings.ToLower(path), encryptedSuffix)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return GetParser("xlsx")
	case strings.HasSuffix(lower, ".json"):
		return GetParser("json")
	}
	return nil, fmt.Errorf("cannot infer source type for %s (use a prefix, one of: %v)", path, AvailableSources())
}

// PassphraseFunc supplies the passphrase for an encrypted file.
type PassphraseFunc func() (string, error)

// LoadDataset resolves a file argument, parses it and normalises the bills.
// Age-encrypted files are decrypted with the passphrase from ask; a nil ask
// makes them an error.
func LoadDataset(arg string, ask PassphraseFunc) (Dataset, error) {
	format, path := ParseFileArg(arg)
	p, err := SourceForPath(format, path)
	if err != nil {
		return Dataset{}, err
	}

	parsePath := path
	encrypted, err := fileIsEncrypted(path)
	if err != nil {
		return Dataset{}, err
	}
	if encrypted {
		if ask == nil {
			return Dataset{}, fmt.Errorf("%s is encrypted and no passphrase is available", path)
		}
		plain, cleanup, err := decryptToTemp(path, ask)
		if err != nil {
			return Dataset{}, err
		}
		defer cleanup()
		parsePath = plain
	}

	ds, err := p.Parse(parsePath)
	if err != nil {
		return Dataset{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	NormalizeBills(ds.Bills)
	return ds, nil
}

func fileIsEncrypted(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, len(ageHeader))
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	return IsEncrypted(head[:n]), nil
}

// decryptToTemp writes the plaintext of path to a private temp file, since the
// parsers work on paths. The cleanup func removes it.
func decryptToTemp(path string, ask PassphraseFunc) (string, func(), error) {
	passphrase, err := ask()
	if err != nil {
		return "", nil, fmt.Errorf("reading passphrase: %w", err)
	}

	in, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer in.Close()

	plain, err := Decrypt(in, passphrase)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}

	ext := filepath.Ext(strings.TrimSuffix(path, encryptedSuffix))
	tmp, err := os.CreateTemp("", "billview-*"+ext)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, plain); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("decrypting %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	return tmp.Name(), cleanup, nil
}
