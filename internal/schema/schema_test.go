package schema

import (
	"errors"
	"testing"

	"avrora/internal/core"
)

func TestResolveSubstringMatch(t *testing.T) {
	header := []string{"Дата", "Сумма в тенге", "Комментарий"}
	m := Resolve(header, Expenses())

	if f, ok := m.Field("Сумма в тенге"); !ok || f != core.FieldAmount {
		t.Fatalf("Сумма в тенге should resolve to amount, got %q ok=%v", f, ok)
	}
	if m.Index(core.FieldAmount) != 1 {
		t.Fatalf("amount index = %d, want 1", m.Index(core.FieldAmount))
	}
	if m.Index(core.FieldDate) != 0 {
		t.Fatalf("date index = %d, want 0", m.Index(core.FieldDate))
	}
	if _, ok := m.Field("Комментарий"); ok {
		t.Fatalf("unmatched header must stay unmapped")
	}
	if m.Index(core.FieldCategory) != -1 {
		t.Fatalf("absent field must report -1")
	}
}

func TestResolveCaseInsensitiveAndFirstWins(t *testing.T) {
	header := []string{"ДАТА ОПЛАТЫ", "дата доставки"}
	m := Resolve(header, Expenses())
	if m.Index(core.FieldDate) != 0 {
		t.Fatalf("leftmost matching column must back the field, got %d", m.Index(core.FieldDate))
	}

	// One header resolves to exactly one field even when several rules
	// could match.
	sales := Resolve([]string{"Итого лидов за день"}, ManagerSales())
	if sales.Index(core.FieldLeads) != 0 {
		t.Fatalf("leads rule must win over revenue for a combined label")
	}
	if sales.Index(core.FieldRevenue) != -1 {
		t.Fatalf("header must not map to two fields")
	}
}

func TestMissingRequired(t *testing.T) {
	m := Resolve([]string{"Категория", "Сумма"}, Expenses())
	missing := m.MissingRequired(core.FieldDate, core.FieldAmount)
	if len(missing) != 1 || missing[0] != core.FieldDate {
		t.Fatalf("missing = %v, want [date]", missing)
	}

	err := CheckRequired("Лист1", m, core.FieldDate)
	var mfe *MissingFieldsError
	if !errors.As(err, &mfe) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	if mfe.Sheet != "Лист1" || len(mfe.Fields) != 1 {
		t.Fatalf("error payload wrong: %+v", mfe)
	}

	if err := CheckRequired("Лист1", m, core.FieldAmount, core.FieldCategory); err != nil {
		t.Fatalf("all fields present, expected nil, got %v", err)
	}
}

func TestManagerSalesTable(t *testing.T) {
	header := []string{"Дата", "Имя менеджера", "Кол-во лидов", "Оформлены", "Итого"}
	m := Resolve(header, ManagerSales())
	want := map[core.Field]int{
		core.FieldDate:    0,
		core.FieldManager: 1,
		core.FieldLeads:   2,
		core.FieldOrders:  3,
		core.FieldRevenue: 4,
	}
	for f, idx := range want {
		if m.Index(f) != idx {
			t.Fatalf("%s index = %d, want %d", f, m.Index(f), idx)
		}
	}
	if n := len(m.Columns()); n != 5 {
		t.Fatalf("columns view has %d entries, want 5", n)
	}
}

func TestPriceListTable(t *testing.T) {
	header := []string{"Название", "Категория", "Себестоимость", "Цена_Базовая"}
	m := Resolve(header, PriceList())
	if m.Index(core.FieldCost) != 2 || m.Index(core.FieldBasePrice) != 3 {
		t.Fatalf("cost/price resolution wrong: cost=%d price=%d",
			m.Index(core.FieldCost), m.Index(core.FieldBasePrice))
	}
}
