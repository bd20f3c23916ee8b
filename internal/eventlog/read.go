package eventlog

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	delimiter = ","

	// maxLineBytes bounds a single log line; analysis logs can carry many
	// columns per record.
	maxLineBytes = 4 << 20
)

// ReadLog reads the lines of the file at path that contain tag and builds
// a table using header as positional column names.
func ReadLog(path, tag string, header []string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	t, err := read(f, path, tag, header)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Read builds a table from the tagged lines of r.
func Read(r io.Reader, tag string, header []string) (*Table, error) {
	return read(r, "", tag, header)
}

func read(r io.Reader, path, tag string, header []string) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var (
		records [][]string
		first   int
		lineNo  int
	)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !strings.Contains(line, tag) {
			continue
		}
		fields := strings.Split(line, delimiter)[1:]
		if n := len(fields); n > 0 && fields[n-1] == "" {
			fields = fields[:n-1]
		}
		if records == nil {
			first = lineNo
		}
		records = append(records, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Path: path, Tag: tag, Line: lineNo, Message: err.Error()}
	}

	if len(records) == 0 {
		return nil, &ParseError{Path: path, Tag: tag, Message: "no matching lines"}
	}

	// The first record fixes the column count.
	width := len(records[0])
	if width == 0 {
		return nil, &ParseError{Path: path, Tag: tag, Line: first, Message: "first matching line has no fields"}
	}
	if width > len(header) {
		return nil, &ParseError{
			Path:    path,
			Tag:     tag,
			Line:    first,
			Message: fmt.Sprintf("line has %d fields but header declares %d columns", width, len(header)),
		}
	}

	values := make([][]float64, width)
	for c := range values {
		values[c] = make([]float64, len(records))
	}
	for r, fields := range records {
		for c := 0; c < width; c++ {
			if c >= len(fields) {
				values[c][r] = math.NaN()
				continue
			}
			values[c][r] = coerce(fields[c])
		}
	}

	columns := make([]*Column, width)
	for c := range columns {
		columns[c] = newColumn(header[c], values[c])
	}
	return newTable(columns), nil
}

// coerce converts a token to a float, mapping anything unparsable to NaN.
func coerce(tok string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
