package eventlog

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// CountTags counts the lines of the log at path that contain each tag.
// A line bearing several tags counts once for each of them.
func CountTags(path string, tags []string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	counts := make(map[string]int, len(tags))
	for _, tag := range tags {
		counts[tag] = 0
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		for _, tag := range tags {
			if strings.Contains(line, tag) {
				counts[tag]++
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Path: path, Line: lineNo, Message: err.Error()}
	}
	return counts, nil
}
