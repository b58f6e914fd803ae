package sparse

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/cartboost/pkg/errors"
)

// ReadLibSVM parses LIBSVM text ("label index:value ...", one row per line).
// Feature indices are kept as written. Blank lines and text after '#' are ignored.
func ReadLibSVM(r io.Reader) (*Matrix, []float64, error) {
	b := NewBuilder()
	var labels []float64

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var features []int32
	var values []float32
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		label, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "libsvm line %d: invalid label", lineNo)
		}
		features, values = features[:0], values[:0]
		for _, tok := range fields[1:] {
			idx, val, ok := strings.Cut(tok, ":")
			if !ok {
				return nil, nil, errors.Newf("libsvm line %d: malformed entry %q", lineNo, tok)
			}
			f, err := strconv.ParseInt(idx, 10, 32)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "libsvm line %d: invalid index %q", lineNo, idx)
			}
			v, err := strconv.ParseFloat(val, 32)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "libsvm line %d: invalid value %q", lineNo, val)
			}
			features = append(features, int32(f))
			values = append(values, float32(v))
		}
		if err := b.AppendRow(features, values); err != nil {
			return nil, nil, errors.Wrapf(err, "libsvm line %d", lineNo)
		}
		labels = append(labels, label)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "libsvm: read")
	}
	if len(labels) == 0 {
		return nil, nil, errors.ErrEmptyData
	}
	return b.Build(0), labels, nil
}
