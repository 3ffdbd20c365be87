// Package dataset loads labeled series from text files.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/chartcard/internal/model"
)

// LoadPoints reads one "label,value" pair per line from the provided file path.
func LoadPoints(path string) ([]model.DataPoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only dataset file.
			_ = cerr
		}
	}()
	points, err := ParsePoints(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}

// ParsePoints reads "label,value" lines. Blank lines and lines starting with '#'
// are skipped; the value is taken after the last comma so labels may contain commas.
func ParsePoints(r io.Reader) ([]model.DataPoint, error) {
	var points []model.DataPoint
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pt, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		points = append(points, pt)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	return points, nil
}

func parseLine(line string) (model.DataPoint, error) {
	idx := strings.LastIndexByte(line, ',')
	if idx < 0 {
		return model.DataPoint{}, fmt.Errorf("expected label,value")
	}
	label := strings.TrimSpace(line[:idx])
	raw := strings.ReplaceAll(strings.TrimSpace(line[idx+1:]), "_", "")
	if label == "" {
		return model.DataPoint{}, fmt.Errorf("label is empty")
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return model.DataPoint{}, fmt.Errorf("invalid value %q", raw)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return model.DataPoint{}, fmt.Errorf("value must be finite")
	}
	return model.DataPoint{Label: label, Value: value}, nil
}
