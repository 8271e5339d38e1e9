package knapsack

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/barabadzhi/construction-mkp/pkg/storage"
)

// ErrMalformedInstance is matched by every structural loader failure.
var ErrMalformedInstance = errors.New("malformed instance")

// MalformedInstanceError locates a loader failure in the input.
type MalformedInstanceError struct {
	Line   int
	Reason string
}

func (e *MalformedInstanceError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("malformed instance: %s", e.Reason)
	}
	return fmt.Sprintf("malformed instance: line %d: %s", e.Line, e.Reason)
}

func (e *MalformedInstanceError) Unwrap() error {
	return ErrMalformedInstance
}

func malformed(line int, format string, args ...any) error {
	return &MalformedInstanceError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

// LoadFile reads an instance from a local file.
func LoadFile(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open instance: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Load reads an instance stored under key in a blob store.
func Load(ctx context.Context, store storage.BlobStore, key string) (*Instance, error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch instance %q: %w", key, err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse reads the text format:
//
//	n m q opt
//	p_1 ... p_n
//	w_1_1 ... w_1_n    (m lines, one per dimension)
//	c_1 ... c_m
//
// Blank lines are ignored.
func Parse(r io.Reader) (*Instance, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16<<20)

	var (
		inst    *Instance
		profits []uint64
		weights [][]uint64
		section int // 0 header, 1 profits, 2 weights, 3 capacity, 4 done
		lineNo  int
	)

	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch section {
		case 0:
			vals, err := parseLine(lineNo, fields, 4)
			if err != nil {
				return nil, err
			}
			if vals[0] == 0 || vals[1] == 0 {
				return nil, malformed(lineNo, "item and dimension counts must be positive")
			}
			if vals[0] > math.MaxInt32 || vals[1] > math.MaxInt32 {
				return nil, malformed(lineNo, "item or dimension count out of range")
			}
			inst = &Instance{N: int(vals[0]), M: int(vals[1]), Q: vals[2], Optimum: vals[3]}
			section = 1
		case 1:
			vals, err := parseLine(lineNo, fields, inst.N)
			if err != nil {
				return nil, err
			}
			profits = vals
			section = 2
		case 2:
			vals, err := parseLine(lineNo, fields, inst.N)
			if err != nil {
				return nil, err
			}
			weights = append(weights, vals)
			if len(weights) == inst.M {
				section = 3
			}
		case 3:
			vals, err := parseLine(lineNo, fields, inst.M)
			if err != nil {
				return nil, err
			}
			inst.Capacity = vals
			section = 4
		default:
			return nil, malformed(lineNo, "unexpected trailing data")
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read instance: %w", err)
	}
	if section != 4 {
		return nil, malformed(0, "unexpected end of input (%s missing)", sectionName(section))
	}

	inst.Items = make([]Item, inst.N)
	for i := range inst.Items {
		w := make([]uint64, inst.M)
		for d := range weights {
			w[d] = weights[d][i]
		}
		inst.Items[i] = NewItem(i+1, profits[i], w)
	}

	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

func parseLine(lineNo int, fields []string, want int) ([]uint64, error) {
	if len(fields) != want {
		return nil, malformed(lineNo, "expected %d values, got %d", want, len(fields))
	}
	vals := make([]uint64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil, malformed(lineNo, "non-numeric token %q", f)
		}
		vals[i] = v
	}
	return vals, nil
}

func sectionName(section int) string {
	switch section {
	case 0:
		return "header"
	case 1:
		return "profits"
	case 2:
		return "weights"
	default:
		return "capacity"
	}
}
