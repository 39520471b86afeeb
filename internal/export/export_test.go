package export

import (
	"bytes"
	"strings"
	"testing"

	excelize "github.com/360EntSecGroup-Skylar/excelize"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := ProductsCSV(&buf, []domain.Product{{
		ID:       1,
		Name:     domain.Text{En: "Night Pants", Sw: "Suruali za Usiku"},
		Category: domain.CategoryBabyPants,
		Price:    18000,
		Stock:    4,
		Status:   domain.ProductLowStock,
		Tags:     []string{"night", "pants"},
	}})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,name_en,name_sw,category,price,stock,status,featured,tags", lines[0])
	assert.Equal(t, "1,Night Pants,Suruali za Usiku,baby-pants,18000,4,low_stock,false,night;pants", lines[1])
}

func TestOrdersCSVCountsUnits(t *testing.T) {
	rows := OrderRows([]domain.Order{{
		ID:     "ORD-001",
		Status: domain.OrderPending,
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2, Price: 100},
			{ProductID: 2, Quantity: 3, Price: 50},
		},
		Total: 350,
	}})
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].Items)

	var buf bytes.Buffer
	require.NoError(t, OrdersCSV(&buf, nil))
	assert.Contains(t, buf.String(), "customer_name")
}

func TestAgentsXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, AgentsXLSX(&buf, []domain.Agent{
		{ID: 7, Name: "Baraka", Region: "Arusha", Tier: domain.TierGold, SalesVolume: 1200000},
	}))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "Name", f.GetCellValue(agentSheet, "B1"))
	assert.Equal(t, "Baraka", f.GetCellValue(agentSheet, "B2"))
	assert.Equal(t, "gold", f.GetCellValue(agentSheet, "F2"))
}
