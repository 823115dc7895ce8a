package plate

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/growthcurve"
	"github.com/carbocation/pfx"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Open reads a layout from path, choosing the reader by file extension:
// .xlsx via excelize, .xls via the legacy BIFF reader, anything else as
// delimited text. Paths may point to Google Storage (gs://) when client is
// non-nil. sheet selects a worksheet by name for spreadsheet formats; empty
// means the first sheet.
func Open(path, sheet string, client *storage.Client, opts Options) (Layout, error) {
	ext := strings.ToLower(filepath.Ext(path))

	// Workbooks are zip or OLE containers themselves, so they bypass the
	// transparent decompression applied to delimited text.
	if ext == ".xlsx" || ext == ".xlsm" || ext == ".xls" {
		f, _, err := growthcurve.MaybeOpenSeekerFromGoogleStorage(growthcurve.ExpandHome(path), client)
		if err != nil {
			return Layout{}, pfx.Err(err)
		}
		defer f.Close()

		if ext == ".xls" {
			return ReadXLS(f, sheet, opts)
		}
		return ReadXLSX(f, sheet, opts)
	}

	r, err := growthcurve.Open(path, client)
	if err != nil {
		return Layout{}, err
	}
	defer r.Close()

	return ReadCSV(r, opts)
}

// ReadCSV reads a delimited layout. The delimiter is detected from the
// content.
func ReadCSV(r io.Reader, opts Options) (Layout, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Layout{}, pfx.Err(err)
	}

	rdr := csv.NewReader(bytes.NewReader(raw))
	rdr.Comma = growthcurve.DetermineDelimiter(bytes.NewReader(raw))
	rdr.FieldsPerRecord = -1
	rdr.LazyQuotes = true

	records, err := rdr.ReadAll()
	if err != nil {
		return Layout{}, pfx.Err(err)
	}

	return fromRecords(records, opts)
}

// ReadXLSX reads a layout from an Office Open XML workbook.
func ReadXLSX(r io.Reader, sheet string, opts Options) (Layout, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Layout{}, pfx.Err(err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Layout{}, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return Layout{}, pfx.Err(err)
	}

	return fromRecords(records, opts)
}

// ReadXLS reads a layout from a legacy Excel 97-2003 workbook.
func ReadXLS(r io.ReadSeeker, sheet string, opts Options) (Layout, error) {
	spreadsheet, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return Layout{}, pfx.Err(err)
	}
	if spreadsheet == nil {
		// A valid OLE container without a Workbook or Book stream.
		return Layout{}, fmt.Errorf("file contains no Excel workbook")
	}

	var ws *xls.WorkSheet
	for sheetID := 0; sheetID < spreadsheet.NumSheets(); sheetID++ {
		candidate := spreadsheet.GetSheet(sheetID)
		if candidate == nil {
			continue
		}
		if sheet == "" || candidate.Name == sheet {
			ws = candidate
			break
		}
	}

	if ws == nil {
		if sheet == "" {
			return Layout{}, fmt.Errorf("workbook has no readable sheets")
		}
		return Layout{}, fmt.Errorf("sheet %q not found in workbook", sheet)
	}

	records := make([][]string, 0, int(ws.MaxRow)+1)
	for rowID := 0; rowID <= int(ws.MaxRow); rowID++ {
		row := xlsRow(ws, rowID)
		if row == nil {
			records = append(records, nil)
			continue
		}

		cells := make([]string, 0, row.LastCol()+1)
		for colID := 0; colID <= row.LastCol(); colID++ {
			cells = append(cells, row.Col(colID))
		}
		records = append(records, cells)
	}

	return fromRecords(records, opts)
}

// xlsRow returns nil for rows the sheet never wrote. WorkSheet.Row
// dereferences the missing entry instead of reporting it.
func xlsRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()

	return ws.Row(i)
}

// fromRecords treats the first non-empty record as the header.
func fromRecords(records [][]string, opts Options) (Layout, error) {
	for i, rec := range records {
		if len(rec) == 0 || rowIsEmpty(rec) {
			continue
		}

		return FromGrid(rec, records[i+1:], opts)
	}

	return Layout{}, fmt.Errorf("layout is empty")
}
