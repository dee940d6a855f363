package internal

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheetName     = "用例脚本"
	exportColumnWidth   = 40
	exportHeaderBgColor = "DDEBF7"
	patternType         = "pattern"
	patternValue        = 1
)

// 表头定义.
var exportHeaders = []string{
	"编号", "用例名称", "参数", "前置脚本1", "前置脚本2", "请求体",
}

// ExportWorkbook 把会话中的用例和脚本导出为 xlsx 文件.
func ExportWorkbook(s *Session, path string) error {
	if s == nil {
		return fmt.Errorf("会话为空")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return fmt.Errorf("创建工作表失败: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    patternType,
			Pattern: patternValue,
			Color:   []string{exportHeaderBgColor},
		},
	})
	if err != nil {
		return fmt.Errorf("创建样式失败: %w", err)
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("创建样式失败: %w", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	if err := f.SetColWidth(exportSheetName, "A", lastCol, exportColumnWidth); err != nil {
		return fmt.Errorf("设置列宽失败: %w", err)
	}
	if err := f.SetColWidth(exportSheetName, "A", "A", 8); err != nil {
		return fmt.Errorf("设置列宽失败: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return fmt.Errorf("写入表头失败: %w", err)
		}
	}
	if err := f.SetCellStyle(exportSheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("设置表头样式失败: %w", err)
	}

	for i, set := range s.Scripts {
		row := i + 2
		params := ""
		if i < len(s.Cases) {
			params = formatCaseParams(s.Cases[i])
		}
		cells := []interface{}{
			i + 1,
			set.CaseName,
			params,
			set.VariableDefs,
			set.SigningScript,
			set.RequestBody,
		}
		for col, value := range cells {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				return fmt.Errorf("写入第 %d 行失败: %w", row, err)
			}
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(cells), row)
		if err := f.SetCellStyle(exportSheetName, first, last, wrapStyle); err != nil {
			return fmt.Errorf("设置样式失败: %w", err)
		}
	}

	summaryRow := len(s.Scripts) + 3
	summary := []string{
		fmt.Sprintf("接口: %s (%s)", s.APITitle, s.APIPath),
		fmt.Sprintf("模型: %s / %s", s.Provider, s.Model),
		fmt.Sprintf("用例数: %d", len(s.Scripts)),
		fmt.Sprintf("会话: %s", s.ID),
	}
	for i, line := range summary {
		if err := f.SetCellValue(exportSheetName, fmt.Sprintf("A%d", summaryRow+i), line); err != nil {
			return fmt.Errorf("写入汇总失败: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存工作簿失败: %w", err)
	}
	return nil
}

// formatCaseParams 每行一个 name=value.
func formatCaseParams(tc TestCase) string {
	lines := make([]string, 0, len(tc.Params))
	for _, p := range tc.Params {
		lines = append(lines, fmt.Sprintf("%s=%s", p.Name, p.Value.String()))
	}
	return strings.Join(lines, "\n")
}
