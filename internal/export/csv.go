// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

/*
Package export serializes the collection to a downloadable tabular file.

It is a pure function of its input: no I/O, no state. The handler layer
decides filenames and download headers.
*/
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/aokidev/tana/internal/collection"
	"github.com/aokidev/tana/internal/platform/apperr"
)

// Columns is the stable, documented column order of the export file.
// The header row uses exactly these names; optional attributes serialize
// as empty strings.
var Columns = []string{
	"id",
	"title",
	"status",
	"next_release_date",
	"last_checked_at",
	"volume",
	"score",
	"genre",
	"finished",
	"unread",
	"author",
	"publisher",
	"isbn",
	"link",
}

// utf8BOM is prepended so Excel detects UTF-8 and renders Japanese titles
// correctly (the classic mojibake workaround).
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV encodes the records as a comma-separated file: one header row, then
// one row per record in the given order.
func CSV(records []collection.Record) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.Write(utf8BOM)

	writer := csv.NewWriter(&buffer)

	if err := writer.Write(Columns); err != nil {
		return nil, apperr.EncodingError(err)
	}
	for _, record := range records {
		if err := writer.Write(Row(record)); err != nil {
			return nil, apperr.EncodingError(err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, apperr.EncodingError(err)
	}

	return buffer.Bytes(), nil
}

// Row formats one record in [Columns] order.
func Row(record collection.Record) []string {
	nextRelease := ""
	if record.NextReleaseDate != nil {
		nextRelease = *record.NextReleaseDate
	}

	lastChecked := ""
	if record.LastCheckedAt != nil {
		lastChecked = record.LastCheckedAt.UTC().Format(time.RFC3339)
	}

	return []string{
		record.ID,
		record.Title,
		string(record.Status),
		nextRelease,
		lastChecked,
		strconv.Itoa(record.Volume),
		strconv.Itoa(record.Score),
		record.Genre,
		strconv.FormatBool(record.Finished),
		strconv.FormatBool(record.Unread),
		record.Author,
		record.Publisher,
		record.ISBN,
		record.Link,
	}
}
