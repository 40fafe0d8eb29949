package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// CSVWriter streams tabular rows as CSV
type CSVWriter struct {
	writer     *csv.Writer
	dateFormat string
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{
		writer:     csv.NewWriter(w),
		dateFormat: "2006-01-02",
	}
}

func (c *CSVWriter) WriteHeader(columns []string) error {
	if err := c.writer.Write(columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	return nil
}

func (c *CSVWriter) WriteRow(row []interface{}) error {
	record := make([]string, len(row))
	for i, val := range row {
		record[i] = c.format(val)
	}
	if err := c.writer.Write(record); err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}
	return nil
}

func (c *CSVWriter) Flush() error {
	c.writer.Flush()
	return c.writer.Error()
}

func (c *CSVWriter) format(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(c.dateFormat)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format(c.dateFormat)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', 2, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
