package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/scienceol/labinv/pkg/common/code"
	core "github.com/scienceol/labinv/pkg/core/inventory"
	"github.com/scienceol/labinv/pkg/middleware/logger"
	"github.com/scienceol/labinv/pkg/repo"
	"github.com/scienceol/labinv/pkg/repo/model"
	"github.com/xuri/excelize/v2"
)

const exportBatch = 500

var baseHeaders = []string{"UUID", "Name", "Description", "Storage Place", "Company", "Catalog Number", "Total", "Available", "Low Stock"}

// columns already covered by baseHeaders, or internal.
var skipKeys = map[string]bool{
	"id": true, "uuid": true, "created_at": true, "updated_at": true,
	"name": true, "description": true, "storage_place": true, "company": true, "catalog_number": true,
	"total_quantity": true, "available_quantity": true, "total_weight": true, "available_weight": true,
}

func extraKeys(rec model.InventoryRecord) ([]string, error) {
	m, err := recordMap(rec)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		if !skipKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func recordMap(rec model.InventoryRecord) (map[string]any, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	err = json.Unmarshal(data, &m)
	return m, err
}

func (s *inventoryImpl) Export(ctx context.Context, req *core.ExportReq) (*core.ExportResp, error) {
	kind, err := core.ResolveKind(req.Type)
	if err != nil {
		return nil, err
	}

	extras, err := extraKeys(kind.New())
	if err != nil {
		return nil, code.ExportErr.WithErr(err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warnf(ctx, "close workbook err: %v", err)
		}
	}()

	sheet := string(kind.Type)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, code.ExportErr.WithErr(err)
	}

	header := make([]any, 0, len(baseHeaders)+len(extras))
	for _, h := range baseHeaders {
		header = append(header, h)
	}
	for _, k := range extras {
		header = append(header, k)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, code.ExportErr.WithErr(err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, style)
	}

	row := 2
	for offset := 0; ; offset += exportBatch {
		list, _, err := s.store.List(ctx, kind, repo.InventoryQuery{Offset: offset, Limit: exportBatch})
		if err != nil {
			return nil, err
		}
		for _, rec := range list {
			m, err := recordMap(rec)
			if err != nil {
				return nil, code.ExportErr.WithErr(err)
			}
			b := rec.Base()
			total, available := rec.Stock()
			values := []any{
				b.UUID.String(), b.Name, b.Description, b.StoragePlace, b.Company, b.CatalogNumber,
				total, available, available < total*model.LowStockRatio,
			}
			for _, k := range extras {
				values = append(values, m[k])
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, code.ExportErr.WithErr(err)
			}
			row++
		}
		if len(list) < exportBatch {
			break
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, code.ExportErr.WithErr(err)
	}
	return &core.ExportResp{
		FileName: fmt.Sprintf("%s-%s.xlsx", kind.Table, time.Now().Format("20060102")),
		Data:     buf.Bytes(),
	}, nil
}
