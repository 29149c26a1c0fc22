package page

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// errMissingClosingDelimiter indicates the document started with a meta
// header delimiter but did not contain a closing delimiter.
var errMissingClosingDelimiter = errors.New("meta header start delimiter found but closing delimiter is missing")

// splitHeader separates a "---" delimited YAML header from the page body. If
// the document does not start with a header delimiter, had is false and body
// is the full input. A first line of the form "--- name:x" is a block
// separator, not a header.
func splitHeader(content []byte) (header []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[start:], closeLine) {
		return []byte{}, content[start+len(closeLine):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A header closed by the final line without trailing newline.
		if bytes.HasSuffix(content, []byte(nl+"---")) {
			end := len(content) - len(nl+"---")
			return content[start : end+len(nl)], nil, true, nil
		}
		return nil, nil, false, errMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// parseMeta parses a raw YAML header into a map. Empty headers yield an empty map.
func parseMeta(header []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(header)) == 0 {
		return map[string]any{}, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(header, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
