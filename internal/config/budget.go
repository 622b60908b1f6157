package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"presupuesto/internal/core"
)

// BudgetTable is the caller-supplied spending plan: per-category budgets and
// per-month caps. It is configuration, not derived data, and it is passed
// explicitly into report calls rather than held as ambient state.
type BudgetTable struct {
	Categories  map[string]core.Money
	MonthlyCaps map[int]core.Money
}

type budgetFile struct {
	Budget struct {
		Categories  map[string]float64 `toml:"categories"`
		MonthlyCaps map[string]float64 `toml:"monthly_caps"`
	} `toml:"budget"`
}

// LoadBudget reads a TOML budget file:
//
//	[budget.categories]
//	Renta = 800.00
//	Comida = 350.50
//
//	[budget.monthly_caps]
//	1 = 2000.00
//
// A missing path returns an empty table, since budgets are per-session and
// optional.
func LoadBudget(path string) (BudgetTable, error) {
	table := BudgetTable{
		Categories:  map[string]core.Money{},
		MonthlyCaps: map[int]core.Money{},
	}
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("read budget file: %w", err)
	}

	var bf budgetFile
	if err := toml.Unmarshal(data, &bf); err != nil {
		return table, fmt.Errorf("parse budget file: %w", err)
	}

	for name, amount := range bf.Budget.Categories {
		table.Categories[name] = toMoney(amount)
	}
	for key, amount := range bf.Budget.MonthlyCaps {
		month, err := strconv.Atoi(key)
		if err != nil || month < 1 || month > 12 {
			return table, fmt.Errorf("invalid monthly cap key %q: must be a month 1-12", key)
		}
		table.MonthlyCaps[month] = toMoney(amount)
	}
	return table, nil
}

func toMoney(amount float64) core.Money {
	return core.Money{Cents: int64(math.Round(amount * 100))}
}
