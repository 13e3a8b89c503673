package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/FocuswithJustin/wildswap/core/errors"
)

// Indent is the per-level indentation used by Marshal.
const Indent = "  "

// Parse decodes a complete JSON document. Numbers keep their literal text.
// Syntax errors and invalid UTF-8 are returned as *errors.ParseError.
func Parse(data []byte) (*Value, error) {
	if !utf8.Valid(data) {
		return nil, parseError(fmt.Errorf("invalid UTF-8 at offset %d", invalidUTF8Offset(data)))
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := decodeValue(dec)
	if err != nil {
		return nil, parseError(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
		}
		return nil, parseError(err)
	}
	return root, nil
}

func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(data)
}

func parseError(err error) *errors.ParseError {
	msg := err.Error()
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		msg = fmt.Sprintf("%s (offset %d)", syn.Error(), syn.Offset)
	}
	return errors.NewParse("JSON", "", msg)
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q at offset %d", t, dec.InputOffset())
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func decodeObject(dec *json.Decoder) (*Value, error) {
	obj := &Value{kind: KindObject}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	if err := closeDelim(dec, '}'); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) (*Value, error) {
	arr := &Value{kind: KindArray, items: []*Value{}}
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr.items = append(arr.items, val)
	}
	if err := closeDelim(dec, ']'); err != nil {
		return nil, err
	}
	return arr, nil
}

func closeDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// Marshal serializes v with two-space indentation and a trailing newline.
// Empty objects and arrays are written as {} and [].
func Marshal(v *Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v *Value, depth int) error {
	switch v.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		if !json.Valid([]byte(v.num)) {
			return fmt.Errorf("invalid number literal %q", string(v.num))
		}
		buf.WriteString(string(v.num))
	case KindString:
		return writeString(buf, v.str)
	case KindArray:
		if len(v.items) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, item := range v.items {
			writeIndent(buf, depth+1)
			if err := writeValue(buf, item, depth+1); err != nil {
				return err
			}
			if i < len(v.items)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte(']')
	case KindObject:
		if len(v.fields) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i, f := range v.fields {
			writeIndent(buf, depth+1)
			if err := writeString(buf, f.Key); err != nil {
				return err
			}
			buf.WriteString(": ")
			if err := writeValue(buf, f.Value, depth+1); err != nil {
				return err
			}
			if i < len(v.fields)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, depth)
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown value kind %v", v.Kind())
	}
	return nil
}

func writeIndent(buf *bytes.Buffer, depth int) {
	buf.WriteString(strings.Repeat(Indent, depth))
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
