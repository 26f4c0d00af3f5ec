package extract

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// cspell:words xlsx

// sniffSize is the number of bytes inspected to detect the delimiter.
const sniffSize = 1024

// Delimiters are the delimiters detected by [CSV], in order of preference.
var Delimiters = []rune{',', ';', '\t', '|'}

// CSV reads a delimited table from r.
// The delimiter is detected from the header line; see [Sniff].
func CSV(r io.Reader) (*Table, error) {
	reader := bufio.NewReaderSize(r, sniffSize)
	sample, err := reader.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read sample: %w", err)
	}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = Sniff(sample)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return NewTable(records)
}

// Sniff detects the delimiter used by sample.
// It picks the candidate from [Delimiters] occurring most often in the first line, defaulting to a comma.
func Sniff(sample []byte) rune {
	line, _, _ := bytes.Cut(sample, []byte("\n"))

	best, count := Delimiters[0], 0
	for _, delimiter := range Delimiters {
		if c := bytes.Count(line, []byte(string(delimiter))); c > count {
			best, count = delimiter, c
		}
	}
	return best
}
