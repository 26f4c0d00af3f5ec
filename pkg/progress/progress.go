// Package progress provides Reader, Writer and Rewritable
package progress

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Reader consistently writes the number of bytes read to a Rewritable.
type Reader struct {
	io.Reader       // Reader to read from
	Bytes     int64 // total number of bytes read (so far)
	Total     int64 // expected total number of bytes, <= 0 if unknown

	Rewritable
}

func (cr *Reader) Read(bytes []byte) (int, error) {
	count, err := cr.Reader.Read(bytes)
	cr.Bytes += int64(count)
	cr.Rewritable.Write("Read " + formatBytes(cr.Bytes, cr.Total))
	return count, err
}

// Writer consistently writes the number of bytes written to a Rewritable.
type Writer struct {
	io.Writer       // Writer to write to
	Bytes     int64 // Total number of bytes written

	Rewritable
}

func (cw *Writer) Write(bytes []byte) (int, error) {
	cw.Bytes += int64(len(bytes))
	cw.Rewritable.Write("Wrote " + formatBytes(cw.Bytes, 0))
	return cw.Writer.Write(bytes)
}

func formatBytes(current, total int64) string {
	if total <= 0 {
		return humanize.Bytes(uint64(current))
	}
	return fmt.Sprintf("%s / %s", humanize.Bytes(uint64(current)), humanize.Bytes(uint64(total)))
}

// DefaultFlushInterval is a reasonable default flush interval
const DefaultFlushInterval = time.Second / 30

// Rewritable represents a single line of a terminal that is continuously rewritten.
// A Rewritable with a nil Writer discards everything.
type Rewritable struct {
	Writer io.Writer

	FlushInterval  time.Duration // minimum time between flushes of the progress
	lastFlush      time.Time     // last time we flushed
	longestContent int           // longest content ever flushed
	content        string        // current content
}

// Write replaces the content of the line, and flushes it unless the last flush was too recent.
func (rw *Rewritable) Write(value string) {
	rw.content = value
	rw.Flush(false)
}

// Flush writes the current content to the underlying writer.
func (rw *Rewritable) Flush(force bool) {
	if rw.Writer == nil {
		return
	}
	if !force && time.Since(rw.lastFlush) <= rw.FlushInterval {
		return
	}

	if len(rw.content) >= rw.longestContent {
		rw.longestContent = len(rw.content)
	}

	// blank out anything left over from longer content
	blank := strings.Repeat(" ", rw.longestContent-len(rw.content))
	fmt.Fprintf(rw.Writer, "\r%s%s", rw.content, blank)

	rw.lastFlush = time.Now()
}

// Close clears the line.
func (rw *Rewritable) Close() {
	if rw.Writer == nil {
		return
	}
	rw.content = ""
	rw.Flush(true)
	_, _ = rw.Writer.Write([]byte("\r"))
	rw.longestContent = 0
}

// Set writes a count out of total with the given prefix.
func (rw *Rewritable) Set(prefix string, count, total int) {
	if count < total {
		rw.Write(fmt.Sprintf("%s: %d/%d", prefix, count, total))
	} else {
		rw.Write(fmt.Sprintf("%s: %d", prefix, count))
	}
}
