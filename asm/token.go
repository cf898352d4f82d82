package asm

import "strings"

// line is one non-blank, comment-stripped source line.
type line struct {
	no     int
	label  string // "" if this line has no label prefix
	fields []string
}

// tokenizeLine strips a ';'-led trailing comment, splits on whitespace,
// and peels off an optional leading "label:" token. It returns nil, nil
// for a blank or comment-only line.
func tokenizeLine(no int, raw string) (*line, error) {
	if i := strings.IndexByte(raw, ';'); i >= 0 {
		raw = raw[:i]
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, nil
	}

	label := ""
	first := fields[0]
	if i := strings.IndexByte(first, ':'); i >= 0 {
		label = first[:i]
		if label == "" {
			return nil, &BadOperandError{Line: no, Reason: "empty label"}
		}
		rest := first[i+1:]
		fields = fields[1:]
		if rest != "" {
			fields = append([]string{rest}, fields...)
		}
	}

	return &line{no: no, label: label, fields: fields}, nil
}

func (l *line) directive() bool {
	return len(l.fields) > 0 && strings.HasPrefix(l.fields[0], ".")
}
