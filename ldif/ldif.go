// Package ldif reads directory entries from LDIF streams and hands
// attribute values out as raw bytes, exactly as stored. LDIF base64-encodes
// any value containing non-printable or non-ASCII bytes; this reader
// reverses that transport encoding and nothing else. It never assumes a
// text encoding for a value: that decision belongs to the caller (see the
// charset package).
//
// Supported: entries separated by blank lines, "attr: value" and
// "attr:: base64" lines, line folding (continuations starting with a
// space), "#" comments, and an optional leading "version:" line. URL
// values ("attr:< ...") are rejected. This is a file-format reader, not an
// LDAP client.
package ldif

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// Attr is one attribute line. Value is the raw octet string; repeated
// attributes appear as repeated Attrs in order.
type Attr struct {
	Name  string
	Value []byte
}

// Entry is one directory entry.
type Entry struct {
	DN    string
	Attrs []Attr
}

// Values returns the raw values of the named attribute, in order.
// Attribute names compare case-insensitively, as in the directory itself.
func (e Entry) Values(name string) [][]byte {
	var out [][]byte
	for _, a := range e.Attrs {
		if strings.EqualFold(a.Name, name) {
			out = append(out, a.Value)
		}
	}
	return out
}

// Parse reads all entries from r.
func Parse(r io.Reader) ([]Entry, error) {
	lines, nums, err := unfold(r)
	if err != nil {
		return nil, err
	}

	var (
		entries []Entry
		cur     *Entry
	)
	flush := func() {
		if cur != nil {
			entries = append(entries, *cur)
			cur = nil
		}
	}

	for i, line := range lines {
		n := nums[i]
		switch {
		case line == "":
			flush()
			continue
		case strings.HasPrefix(line, "#"):
			continue
		case cur == nil && strings.HasPrefix(strings.ToLower(line), "version:"):
			continue
		}

		name, value, err := parseLine(line, n)
		if err != nil {
			return nil, err
		}

		if cur == nil {
			if !strings.EqualFold(name, "dn") {
				return nil, fmt.Errorf("ldif: line %d: entry must begin with dn, got %q", n, name)
			}
			cur = &Entry{DN: string(value)}
			continue
		}
		if strings.EqualFold(name, "dn") {
			return nil, fmt.Errorf("ldif: line %d: dn inside entry body", n)
		}
		cur.Attrs = append(cur.Attrs, Attr{Name: name, Value: value})
	}
	flush()
	return entries, nil
}

// unfold joins continuation lines (leading space) onto their logical line.
func unfold(r io.Reader) ([]string, []int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var (
		lines []string
		nums  []int
		n     int
	)
	for sc.Scan() {
		n++
		line := sc.Text()
		if strings.HasPrefix(line, " ") {
			if len(lines) == 0 {
				return nil, nil, fmt.Errorf("ldif: line %d: continuation with nothing to continue", n)
			}
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
		nums = append(nums, n)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("ldif: read: %w", err)
	}
	return lines, nums, nil
}

func parseLine(line string, n int) (string, []byte, error) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", nil, fmt.Errorf("ldif: line %d: missing attribute separator", n)
	}
	name := line[:idx]
	rest := line[idx+1:]

	switch {
	case strings.HasPrefix(rest, ":"):
		enc := strings.TrimPrefix(rest[1:], " ")
		raw, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return "", nil, fmt.Errorf("ldif: line %d: attribute %q: bad base64: %w", n, name, err)
		}
		return name, raw, nil
	case strings.HasPrefix(rest, "<"):
		return "", nil, fmt.Errorf("ldif: line %d: attribute %q: URL values not supported", n, name)
	default:
		return name, []byte(strings.TrimPrefix(rest, " ")), nil
	}
}
