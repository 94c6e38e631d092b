package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
)

// Encoding names a text encoding of a table file.
type Encoding string

const (
	EncodingUTF8    Encoding = "utf-8"
	EncodingUTF8BOM Encoding = "utf-8-sig"
	EncodingCP949   Encoding = "cp949"
	EncodingEUCKR   Encoding = "euc-kr"
	EncodingLatin1  Encoding = "latin1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// candidateSeparators are tried in order when sniffing a table.
var candidateSeparators = []rune{',', '\t', ';', '|'}

// Format describes how a table file was decoded.
type Format struct {
	Encoding  Encoding
	Separator rune
}

func (f Format) String() string {
	separator := string(f.Separator)
	if f.Separator == '\t' {
		separator = `\t`
	}
	return fmt.Sprintf("encoding=%s sep=%q", f.Encoding, separator)
}

// ReadFile reads a delimited table, detecting its encoding and separator.
// The first separator whose header contains every required column wins.
func ReadFile(path string, required ...string) (*Table, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Format{}, fmt.Errorf("reading table %s: %w", path, err)
	}
	t, format, err := Read(data, required...)
	if err != nil {
		return nil, format, fmt.Errorf("table %s: %w", path, err)
	}
	return t, format, nil
}

// Read decodes and parses table bytes. See ReadFile.
func Read(data []byte, required ...string) (*Table, Format, error) {
	format := Format{Encoding: DetectEncoding(data)}
	text, err := DecodeText(data, format.Encoding)
	if err != nil {
		return nil, format, err
	}

	var (
		best    *Table
		lastErr error
	)
	for _, separator := range candidateSeparators {
		t, err := parse(text, separator)
		if err != nil {
			lastErr = err
			continue
		}
		if len(required) > 0 {
			if err := t.Require(required...); err != nil {
				lastErr = err
				continue
			}
			format.Separator = separator
			return t, format, nil
		}
		if best == nil || len(t.Header) > len(best.Header) {
			best = t
			format.Separator = separator
		}
	}

	if best != nil {
		return best, format, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(required, ", "))
	}
	return nil, format, lastErr
}

func parse(text string, separator rune) (*Table, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = separator
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing with separator %q: %w", separator, err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// DetectEncoding guesses the encoding of table bytes. A UTF-8 byte order
// mark or valid UTF-8 wins; otherwise the charset detector decides between
// Korean code page 949 and Latin-1.
func DetectEncoding(data []byte) Encoding {
	if bytes.HasPrefix(data, utf8BOM) {
		return EncodingUTF8BOM
	}
	if utf8.Valid(data) {
		return EncodingUTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return EncodingCP949
	}
	switch strings.ToUpper(result.Charset) {
	case "ISO-8859-1", "WINDOWS-1252":
		if result.Language != "ko" && !looksKorean(data) {
			return EncodingLatin1
		}
	}
	return EncodingCP949
}

// looksKorean reports whether the bytes decode as code page 949 without
// replacement characters.
func looksKorean(data []byte) bool {
	decoded, err := korean.EUCKR.NewDecoder().Bytes(data)
	if err != nil {
		return false
	}
	return !bytes.ContainsRune(decoded, utf8.RuneError)
}

// DecodeText converts table bytes in the given encoding to a string.
func DecodeText(data []byte, enc Encoding) (string, error) {
	var decoder *encoding.Decoder
	switch enc {
	case EncodingUTF8, "":
		return string(data), nil
	case EncodingUTF8BOM:
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	case EncodingCP949, EncodingEUCKR:
		decoder = korean.EUCKR.NewDecoder()
	case EncodingLatin1:
		decoder = charmap.ISO8859_1.NewDecoder()
	default:
		return "", fmt.Errorf("unsupported encoding %q", enc)
	}

	decoded, err := decoder.Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", enc, err)
	}
	return string(decoded), nil
}
