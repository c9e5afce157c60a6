package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/BerniceZTT/carehome_end/models"
)

// ExportHeader 导出列顺序
var ExportHeader = []string{
	"ID",
	"Status",
	"Priority",
	"Contact Name",
	"Contact Email",
	"Home",
	"Location",
	"Operator",
	"Created Date",
}

const exportSheet = "Inquiries"

// ExportRows 将已筛选的咨询转换为导出行（不含表头）
func (e *Engine) ExportRows(inquiries []models.Inquiry, now time.Time) [][]string {
	rows := make([][]string, 0, len(inquiries))
	for i := range inquiries {
		inq := &inquiries[i]
		rows = append(rows, []string{
			inq.ID.Hex(),
			StatusDisplayText(inq.Status),
			string(e.thresholds.Level(inq, now)),
			ContactName(inq),
			contactEmail(inq),
			inq.Home.Name,
			location(inq.Home),
			inq.Home.OperatorName,
			inq.CreatedAt.UTC().Format("2006-01-02"),
		})
	}
	return rows
}

// ExportFilename 导出文件名：{prefix}-{yyyy-MM-dd}.{ext}
func ExportFilename(prefix string, now time.Time, ext string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, now.Format("2006-01-02"), ext)
}

// WriteCSV 写出 CSV（含表头）
func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("写入CSV表头失败: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("写入CSV数据失败: %w", err)
	}
	return nil
}

// BuildXLSX 生成 Excel 文件内容（含表头）
func BuildXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("创建工作表失败: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("删除默认工作表失败: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("创建表头样式失败: %w", err)
	}

	if err := writeSheetRow(f, 1, ExportHeader); err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(ExportHeader))
	if err != nil {
		return nil, fmt.Errorf("转换列号失败: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("设置表头样式失败: %w", err)
	}
	if err := f.SetColWidth(exportSheet, "A", lastCol, 20); err != nil {
		return nil, fmt.Errorf("设置列宽失败: %w", err)
	}

	for i, row := range rows {
		if err := writeSheetRow(f, i+2, row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("写出Excel失败: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheetRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("转换坐标失败: %w", err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(exportSheet, cell, &cells); err != nil {
		return fmt.Errorf("写入第%d行失败: %w", row, err)
	}
	return nil
}

func contactEmail(inq *models.Inquiry) string {
	if inq.ContactEmail != "" {
		return inq.ContactEmail
	}
	if inq.Family != nil {
		return inq.Family.Email
	}
	return ""
}

func location(home *models.HomeRef) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{home.City, home.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
