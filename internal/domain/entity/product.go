package entity

import "github.com/shopspring/decimal"

// Product referencia de catálogo que necesita el inventario (el catálogo se administra fuera).
// MinStock es el mínimo que define el umbral de stock bajo por sucursal.
type Product struct {
	ID         string
	SKU        string
	Name       string
	MinStock   decimal.Decimal
	IsWeighted bool
}

// Branch sucursal (unidad de partición del inventario).
type Branch struct {
	ID   string
	Name string
}
