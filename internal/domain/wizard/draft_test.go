package wizard

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newDraft() *Draft {
	return Open(uuid.New(), uuid.New(), decimal.NewFromInt(25), "SEK", testNow)
}

func consultingHour() ProductSnapshot {
	return ProductSnapshot{
		ID:        uuid.New(),
		Name:      "Consulting hour",
		Unit:      "hour",
		UnitPrice: decimal.NewFromInt(1200),
	}
}

func TestOpenStartsOnCustomerStep(t *testing.T) {
	d := newDraft()

	assert.Equal(t, StepSelectCustomer, d.Step)
	assert.Empty(t, d.Lines)
	assert.Nil(t, d.Customer)
	assert.False(t, d.CanAdvance())
	assert.True(t, d.Totals.Total.IsZero())
}

func TestCanAdvanceTransitionTable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(d *Draft)
		want  bool
	}{
		{"customer step without selection", func(d *Draft) {}, false},
		{"customer step with existing customer", func(d *Draft) {
			d.SelectExistingCustomer(uuid.New(), "Anna Andersson")
		}, true},
		{"customer step with nil id", func(d *Draft) {
			d.SelectExistingCustomer(uuid.Nil, "")
		}, false},
		{"customer step with adhoc missing email", func(d *Draft) {
			d.SetAdhocCustomer(AdhocCustomer{Name: "Anna"})
		}, false},
		{"customer step with blank adhoc name", func(d *Draft) {
			d.SetAdhocCustomer(AdhocCustomer{Name: "  ", Email: "anna@example.com"})
		}, false},
		{"customer step with complete adhoc", func(d *Draft) {
			d.SetAdhocCustomer(AdhocCustomer{Name: "Anna", Email: "anna@example.com"})
		}, true},
		{"items step without lines", func(d *Draft) {
			d.Step = StepSelectItems
		}, false},
		{"items step with a line", func(d *Draft) {
			d.Step = StepSelectItems
			d.AddProduct(consultingHour())
		}, true},
		{"review step never advances", func(d *Draft) {
			d.Step = StepReviewAndCommit
			d.AddProduct(consultingHour())
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDraft()
			tt.setup(d)
			assert.Equal(t, tt.want, d.CanAdvance())
		})
	}
}

func TestBlockedAdvanceLeavesStepUnchanged(t *testing.T) {
	d := newDraft()

	assert.False(t, d.Advance())
	assert.Equal(t, StepSelectCustomer, d.Step)

	d.SelectExistingCustomer(uuid.New(), "Anna Andersson")
	require.True(t, d.Advance())
	assert.Equal(t, StepSelectItems, d.Step)

	assert.False(t, d.Advance())
	assert.Equal(t, StepSelectItems, d.Step)
}

func TestSetStepOnlyMovesOneStep(t *testing.T) {
	d := newDraft()
	d.SelectExistingCustomer(uuid.New(), "Anna Andersson")

	assert.False(t, d.SetStep(StepReviewAndCommit))
	assert.Equal(t, StepSelectCustomer, d.Step)
	assert.False(t, d.SetStep(Step(0)))
	assert.False(t, d.SetStep(Step(4)))
	assert.True(t, d.SetStep(StepSelectCustomer))

	require.True(t, d.SetStep(StepSelectItems))
	d.AddProduct(consultingHour())
	require.True(t, d.SetStep(StepReviewAndCommit))

	assert.True(t, d.Back())
	assert.Equal(t, StepSelectItems, d.Step)
	assert.True(t, d.Back())
	assert.False(t, d.Back())
	assert.Equal(t, StepSelectCustomer, d.Step)
}

func TestAddProductTwiceIncrementsQuantity(t *testing.T) {
	d := newDraft()
	p := consultingHour()

	first := d.AddProduct(p)
	second := d.AddProduct(p)

	require.Len(t, d.Lines, 1)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, d.Lines[0].Quantity)
	assert.Equal(t, "2400.00", d.Lines[0].Total.StringFixed(2))
}

func TestAddProductCopiesDescription(t *testing.T) {
	d := newDraft()
	p := consultingHour()
	p.Description = "Senior level"

	line := d.AddProduct(p)

	assert.Equal(t, "Consulting hour - Senior level", line.Description)
	assert.Equal(t, "hour", line.Unit)
	require.NotNil(t, line.ProductID)
	assert.Equal(t, p.ID, *line.ProductID)
}

func TestUpdateLineClampsValues(t *testing.T) {
	d := newDraft()
	line := d.AddProduct(consultingHour())

	updated, err := d.UpdateLine(line.ID, FieldQuantity, "0")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Quantity)

	updated, err = d.UpdateLine(line.ID, FieldQuantity, "-3")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Quantity)

	updated, err = d.UpdateLine(line.ID, FieldDiscount, "150")
	require.NoError(t, err)
	assert.True(t, updated.DiscountPercent.Equal(decimal.NewFromInt(100)))
	assert.True(t, updated.Total.IsZero())

	updated, err = d.UpdateLine(line.ID, FieldDiscount, "-10")
	require.NoError(t, err)
	assert.True(t, updated.DiscountPercent.IsZero())
}

func TestUpdateLineRejectsUnparseableInput(t *testing.T) {
	d := newDraft()
	line := d.AddProduct(consultingHour())

	_, err := d.UpdateLine(line.ID, FieldQuantity, "three")
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "quantity", fieldErr.Field)

	_, err = d.UpdateLine(line.ID, FieldDescription, "   ")
	require.ErrorAs(t, err, &fieldErr)

	_, err = d.UpdateLine(line.ID, LineField("sort_order"), "1")
	require.ErrorAs(t, err, &fieldErr)

	_, err = d.UpdateLine(uuid.New(), FieldQuantity, "2")
	assert.ErrorIs(t, err, ErrLineNotFound)

	assert.Equal(t, 1, d.Lines[0].Quantity)
}

func TestRemoveLineRecomputesTotals(t *testing.T) {
	d := newDraft()
	a := d.AddProduct(consultingHour())
	_, err := d.AddCustomLine("Travel", "trip", decimal.NewFromInt(500), 1)
	require.NoError(t, err)
	assert.Equal(t, "1700.00", d.Totals.Subtotal.StringFixed(2))

	require.NoError(t, d.RemoveLine(a.ID))

	require.Len(t, d.Lines, 1)
	assert.Equal(t, "500.00", d.Totals.Subtotal.StringFixed(2))
	assert.ErrorIs(t, d.RemoveLine(a.ID), ErrLineNotFound)
}

func TestConsultingScenarioTotals(t *testing.T) {
	d := newDraft()
	d.SelectExistingCustomer(uuid.New(), "Anna Andersson")
	require.True(t, d.Advance())

	line := d.AddProduct(consultingHour())
	_, err := d.UpdateLine(line.ID, FieldQuantity, "3")
	require.NoError(t, err)
	_, err = d.UpdateLine(line.ID, FieldDiscount, "10")
	require.NoError(t, err)
	require.True(t, d.Advance())

	assert.Equal(t, StepReviewAndCommit, d.Step)
	assert.Equal(t, "3240.00", d.Lines[0].Total.StringFixed(2))
	assert.Equal(t, "3240.00", d.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "810.00", d.Totals.TaxAmount.StringFixed(2))
	assert.Equal(t, "4050.00", d.Totals.Total.StringFixed(2))
}

func TestSetPricingClamps(t *testing.T) {
	d := newDraft()
	d.AddProduct(consultingHour())

	d.SetPricing(decimal.NewFromInt(-5), decimal.NewFromInt(-1))

	assert.True(t, d.GlobalDiscount.IsZero())
	assert.True(t, d.TaxRate.IsZero())
	assert.Equal(t, "1200.00", d.Totals.Total.StringFixed(2))
}

func TestChangingCustomerResetsResolvedID(t *testing.T) {
	d := newDraft()
	d.SetAdhocCustomer(AdhocCustomer{Name: "Anna", Email: "anna@example.com"})
	id := uuid.New()
	d.ResolvedCustomerID = &id

	d.SetAdhocCustomer(AdhocCustomer{Name: "Anna A", Email: "anna@example.com"})

	assert.Nil(t, d.ResolvedCustomerID)
}

func TestDraftJSONRoundTripKeepsSelectionVariant(t *testing.T) {
	tests := []struct {
		name string
		sel  func(d *Draft)
	}{
		{"existing", func(d *Draft) { d.SelectExistingCustomer(uuid.New(), "Anna Andersson") }},
		{"adhoc", func(d *Draft) {
			d.SetAdhocCustomer(AdhocCustomer{Name: "Anna", Email: "anna@example.com", CompanyName: "Andersson AB"})
		}},
		{"none", func(d *Draft) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDraft()
			tt.sel(d)
			d.AddProduct(consultingHour())

			data, err := json.Marshal(d)
			require.NoError(t, err)

			var got Draft
			require.NoError(t, json.Unmarshal(data, &got))

			assert.Equal(t, d.Customer, got.Customer)
			assert.Equal(t, d.Step, got.Step)
			require.Len(t, got.Lines, 1)
			assert.True(t, d.Totals.Total.Equal(got.Totals.Total))
		})
	}
}

func TestDraftJSONExposesNavigationState(t *testing.T) {
	d := newDraft()
	d.SelectExistingCustomer(uuid.New(), "Anna Andersson")

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "select_customer", raw["step_name"])
	assert.Equal(t, true, raw["can_advance"])
	assert.Equal(t, "existing", raw["customer"].(map[string]any)["kind"])
}

func TestUnmarshalRejectsUnknownSelectionKind(t *testing.T) {
	var d Draft
	err := json.Unmarshal([]byte(`{"step":1,"customer":{"kind":"walk-in"}}`), &d)
	assert.Error(t, err)
}
