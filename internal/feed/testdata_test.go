package feed

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// feedRows builds a sheet with the supplier preamble, header and data rows.
func feedRows(data ...[]string) [][]string {
	rows := make([][]string, 0, HeaderRow+1+len(data))
	rows = append(rows, []string{"Остатки на складе"})
	for len(rows) < HeaderRow {
		rows = append(rows, nil)
	}
	rows = append(rows, []string{"№", ColumnCode, "Наименование", ColumnQuantity, ColumnPrice})
	return append(rows, data...)
}

func htmlSheet(rows [][]string) []byte {
	var sb strings.Builder
	sb.WriteString(`<html><head><meta charset="utf-8"></head><body><table>`)
	for _, r := range rows {
		sb.WriteString("<tr>")
		for _, c := range r {
			fmt.Fprintf(&sb, "<td>%s</td>", c)
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</table></body></html>")
	return []byte(sb.String())
}

func xlsxSheet(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, r := range rows {
		for j, c := range r {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellStr(sheet, ref, c); err != nil {
				t.Fatal(err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func zipArchive(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
