package dataset

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/uaepulse/pulse-backend/pkg/errors"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

// DecodeXLSX reads the first sheet of an Excel workbook into a table. The
// first row is the header; subsequent rows become cells, ragged rows
// padded to the header width.
func DecodeXLSX(r io.Reader) (*table.Table, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "opening workbook")
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "workbook has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading sheet rows")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sheet is empty")
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	t := table.New(header...)
	for _, row := range rows[1:] {
		t.AppendRow(row...)
	}
	return t, nil
}
