// Package predictions reads scored prediction sets from JSON Lines files.
package predictions

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
)

const (
	initialBufferSize = 64 * 1024
	maxLineSize       = 1024 * 1024
)

// Record is one scored entity. A null or absent label means the outcome is unknown.
type Record struct {
	EntityID string   `json:"entity_id"`
	Score    *float64 `json:"score"`
	Label    *float64 `json:"label"`
}

// Set holds parallel score and label sequences in file order.
// Unknown labels are NaN.
type Set struct {
	EntityIDs []string
	Scores    []float64
	Labels    []float64
}

// Len returns the number of predictions.
func (s Set) Len() int {
	return len(s.Scores)
}

// LoadFile reads a prediction set from path.
func LoadFile(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return Set{}, fmt.Errorf("open predictions: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses JSON Lines from r. Blank lines are skipped; a line that is not
// valid JSON or lacks a score fails the whole read.
func Read(r io.Reader) (Set, error) {
	var set Set

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialBufferSize), maxLineSize)

	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return Set{}, fmt.Errorf("%w: predictions line %d: %w", apperrors.ErrInvalidConfig, lineNo, err)
		}

		if rec.Score == nil {
			return Set{}, fmt.Errorf("%w: predictions line %d: missing score", apperrors.ErrInvalidConfig, lineNo)
		}

		label := math.NaN()
		if rec.Label != nil {
			label = *rec.Label
		}

		set.EntityIDs = append(set.EntityIDs, rec.EntityID)
		set.Scores = append(set.Scores, *rec.Score)
		set.Labels = append(set.Labels, label)
	}

	if err := scanner.Err(); err != nil {
		return Set{}, fmt.Errorf("read predictions: %w", err)
	}

	return set, nil
}
