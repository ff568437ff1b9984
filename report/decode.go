package report

import (
	"io"
	"log/slog"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/rpt/formula"
)

// ReadAll reads r to the end through a read-ahead buffer.
func ReadAll(r io.Reader) ([]byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return data, nil
}

// ParseDocument decodes YAML or JSON text into a formula value. Mapping
// keys keep their document order. Empty input yields undefined.
func ParseDocument(data []byte) (formula.Value, error) {
	var doc any

	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.Int("length", len(data)))
	}

	if doc == nil && len(data) == 0 {
		return formula.Undefined{}, nil
	}

	return formula.FromNative(doc), nil
}

// DecodeData reads a data document from r.
func DecodeData(r io.Reader) (formula.Value, error) {
	data, err := ReadAll(r)
	if err != nil {
		return nil, err
	}

	return ParseDocument(data)
}

// Decode reads a report definition from r.
func Decode(r io.Reader) (*Report, error) {
	v, err := DecodeData(r)
	if err != nil {
		return nil, err
	}

	return FromValue(v)
}

// Encode writes r as a YAML document.
func (r *Report) Encode(w io.Writer) error {
	data, err := yaml.MarshalWithOptions(r.Ordered(), yaml.Indent(2))
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}
