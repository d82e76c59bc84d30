package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	stderrors "errors" // Standard errors package

	"github.com/buger/jsonparser"
	"github.com/mcncl/jsontree/internal/errors" // Custom errors package
	"github.com/mcncl/jsontree/internal/value"
)

// Options controls how JSON text becomes a value tree.
type Options struct {
	// DetectDates turns ISO-8601 / RFC 3339 looking strings into Date values.
	DetectDates bool
}

// Parser converts JSON text into ordered value trees.
type Parser struct {
	opts Options
}

// New creates a Parser with the given options.
func New(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Parse converts JSON data from an io.Reader into a value tree
func Parse(reader io.Reader) (value.Value, error) {
	return New(Options{}).Parse(reader)
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (value.Value, error) {
	return New(Options{}).ParseString(jsonString)
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (value.Value, error) {
	return New(Options{}).ParseFile(filePath)
}

// Parse reads exactly one JSON value from reader. Object members keep their source order.
func (p *Parser) Parse(reader io.Reader) (value.Value, error) {
	decoder := json.NewDecoder(reader)

	var raw json.RawMessage
	if err := decoder.Decode(&raw); err != nil {
		if stderrors.Is(err, io.EOF) {
			return value.Value{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		var syntaxError *json.SyntaxError
		if stderrors.As(err, &syntaxError) {
			return value.Value{}, errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
				errors.ErrInvalidJSON,
			)
		}
		if stderrors.Is(err, io.ErrUnexpectedEOF) {
			return value.Value{}, errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
		}
		return value.Value{}, errors.NewParsingError("failed to decode JSON", err)
	}

	// Only whitespace may follow the first value.
	if decoder.More() {
		var trailing json.RawMessage
		if err := decoder.Decode(&trailing); err != nil {
			if !stderrors.Is(err, io.EOF) {
				return value.Value{}, errors.NewParsingError("invalid trailing data after first JSON value", err)
			}
		} else {
			return value.Value{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
		}
	}

	data := bytes.TrimSpace(raw)
	root, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return value.Value{}, errors.NewParsingError("failed to read JSON value", err)
	}
	v, err := p.build(root, dataType)
	if err != nil {
		return value.Value{}, errors.NewParsingError("failed to build value tree", err)
	}
	return v, nil
}

// ParseString parses JSON from a string
func (p *Parser) ParseString(jsonString string) (value.Value, error) {
	if strings.TrimSpace(jsonString) == "" {
		return value.Value{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return p.Parse(strings.NewReader(jsonString))
}

// ParseFile parses JSON from a file path
func (p *Parser) ParseFile(filePath string) (value.Value, error) {
	if strings.TrimSpace(filePath) == "" {
		return value.Value{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return value.Value{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return value.Value{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return value.Value{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return value.Value{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return p.Parse(file)
}

// build converts one raw JSON token tree, as returned by jsonparser, into a Value.
func (p *Parser) build(data []byte, dataType jsonparser.ValueType) (value.Value, error) {
	switch dataType {
	case jsonparser.Null:
		return value.Null(), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(data)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(b), nil
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(data)
		if err != nil {
			// out-of-range literals become ±Infinity, as JSON.parse does
			inf, rangeErr := strconv.ParseFloat(string(data), 64)
			if stderrors.Is(rangeErr, strconv.ErrRange) {
				return value.Number(inf), nil
			}
			return value.Value{}, err
		}
		return value.Number(f), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return value.Value{}, err
		}
		if p.opts.DetectDates {
			if t, ok := detectDate(s); ok {
				return value.Date(t), nil
			}
		}
		return value.String(s), nil
	case jsonparser.Array:
		var items []value.Value
		var itemErr error
		_, err := jsonparser.ArrayEach(data, func(raw []byte, dt jsonparser.ValueType, _ int, err error) {
			if itemErr != nil {
				return
			}
			if err != nil {
				itemErr = err
				return
			}
			item, err := p.build(raw, dt)
			if err != nil {
				itemErr = fmt.Errorf("[%d]: %w", len(items), err)
				return
			}
			items = append(items, item)
		})
		if err != nil {
			return value.Value{}, err
		}
		if itemErr != nil {
			return value.Value{}, itemErr
		}
		return value.Array(items...), nil
	case jsonparser.Object:
		var members []value.Member
		err := jsonparser.ObjectEach(data, func(key []byte, raw []byte, dt jsonparser.ValueType, _ int) error {
			member, err := p.build(raw, dt)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			members = append(members, value.M(string(key), member))
			return nil
		})
		if err != nil {
			return value.Value{}, err
		}
		return value.Object(members...), nil
	}
	return value.Value{}, fmt.Errorf("unexpected JSON token %s: %w", dataType, errors.ErrInvalidJSON)
}
