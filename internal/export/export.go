// Package export writes catalog, order and agent listings as CSV or XLSX.
package export

import (
	"io"
	"strconv"
	"strings"

	excelize "github.com/360EntSecGroup-Skylar/excelize"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

type ProductRow struct {
	ID       int64  `csv:"id"`
	NameEn   string `csv:"name_en"`
	NameSw   string `csv:"name_sw"`
	Category string `csv:"category"`
	Price    int64  `csv:"price"`
	Stock    int    `csv:"stock"`
	Status   string `csv:"status"`
	Featured bool   `csv:"featured"`
	Tags     string `csv:"tags"`
}

type OrderRow struct {
	ID            string `csv:"id"`
	Date          string `csv:"date"`
	CustomerName  string `csv:"customer_name"`
	CustomerPhone string `csv:"customer_phone"`
	Status        string `csv:"status"`
	Items         int    `csv:"items"`
	Total         int64  `csv:"total"`
	PaymentMethod string `csv:"payment_method"`
}

func ProductRows(products []domain.Product) []*ProductRow {
	rows := make([]*ProductRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, &ProductRow{
			ID:       p.ID,
			NameEn:   p.Name.En,
			NameSw:   p.Name.Sw,
			Category: string(p.Category),
			Price:    p.Price,
			Stock:    p.Stock,
			Status:   string(p.Status),
			Featured: p.Featured,
			Tags:     strings.Join(p.Tags, ";"),
		})
	}
	return rows
}

func OrderRows(orders []domain.Order) []*OrderRow {
	rows := make([]*OrderRow, 0, len(orders))
	for _, o := range orders {
		n := 0
		for _, it := range o.Items {
			n += it.Quantity
		}
		rows = append(rows, &OrderRow{
			ID:            o.ID,
			Date:          o.Date,
			CustomerName:  o.CustomerName,
			CustomerPhone: o.CustomerPhone,
			Status:        string(o.Status),
			Items:         n,
			Total:         o.Total,
			PaymentMethod: o.PaymentMethod,
		})
	}
	return rows
}

func ProductsCSV(w io.Writer, products []domain.Product) error {
	return errors.Wrap(gocsv.Marshal(ProductRows(products), w), "write products csv")
}

func OrdersCSV(w io.Writer, orders []domain.Order) error {
	return errors.Wrap(gocsv.Marshal(OrderRows(orders), w), "write orders csv")
}

const agentSheet = "Agents"

var agentHeader = []string{"ID", "Name", "Location", "Region", "Phone", "Tier", "Status", "Sales Volume", "Registered", "Last Order"}

// AgentsXLSX writes one sheet with a header row and one row per agent
func AgentsXLSX(w io.Writer, agents []domain.Agent) error {
	xlsx := excelize.NewFile()
	xlsx.SetSheetName("Sheet1", agentSheet)

	for i, h := range agentHeader {
		xlsx.SetCellValue(agentSheet, cell(i, 1), h)
	}
	for r, a := range agents {
		row := r + 2
		values := []interface{}{
			a.ID, a.Name, a.Location, a.Region, a.Phone,
			string(a.Tier), a.Status, a.SalesVolume, a.RegistrationDate, a.LastOrderDate,
		}
		for i, v := range values {
			xlsx.SetCellValue(agentSheet, cell(i, row), v)
		}
	}
	return errors.Wrap(xlsx.Write(w), "write agents xlsx")
}

func cell(col, row int) string {
	return excelize.ToAlphaString(col) + strconv.Itoa(row)
}
