package snapshot

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var csvHeader = []string{"index", "symbol", "price", "decimals", "timestamp"}

// Header returns the header line, including the trailing newline.
func Header() string {
	return strings.Join(csvHeader, ",") + "\n"
}

// Encoder serializes rows into CSV lines.
//
// The default encoder joins fields verbatim without any quoting, so a symbol that contains a comma
// or a quote shifts the columns of its line. Strict encoders quote such fields per RFC 4180.
type Encoder struct {
	strict bool
}

func NewEncoder(strict bool) *Encoder {
	return &Encoder{strict: strict}
}

// Encode returns one line per row, each terminated with "\n". The header is included when withHeader is set.
func (e *Encoder) Encode(rows []FeedRow, withHeader bool) ([]byte, error) {
	if e.strict {
		return e.encodeStrict(rows, withHeader)
	}

	var buf bytes.Buffer
	if withHeader {
		buf.WriteString(Header())
	}

	for _, r := range rows {
		buf.WriteString(strings.Join(rowFields(r), ","))
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

func (e *Encoder) encodeStrict(rows []FeedRow, withHeader bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if withHeader {
		if err := w.Write(csvHeader); err != nil {
			return nil, errors.Wrap(err, "failed to encode CSV header")
		}
	}

	for _, r := range rows {
		if err := w.Write(rowFields(r)); err != nil {
			return nil, errors.Wrapf(err, "failed to encode CSV row for feed %d", r.Index)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to flush CSV")
	}

	return buf.Bytes(), nil
}

func rowFields(r FeedRow) []string {
	return []string{
		strconv.FormatInt(r.Index, 10),
		r.Symbol,
		r.Price,
		strconv.Itoa(r.Decimals),
		r.Timestamp,
	}
}
