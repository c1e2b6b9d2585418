package mapping

import (
	"database/sql"
	stdErrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbmap/errors"
)

var invoiceColumns = []string{"InvoiceId", "CustomerId", "InvoiceDate", "BillingState", "Total"}

func invoiceRow() *fakeReader {
	return row(invoiceColumns, int64(98), int64(17), "2013-12-22 00:00:00", "AB", 1.98)
}

func TestGetValue(t *testing.T) {
	r := invoiceRow()

	id, err := GetValue[int64](r, "InvoiceId")
	require.NoError(t, err)
	assert.Equal(t, int64(98), id)

	customer, err := GetValue[int](r, "customerid")
	require.NoError(t, err)
	assert.Equal(t, 17, customer)

	date, err := GetValue[time.Time](r, "InvoiceDate")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2013, 12, 22, 0, 0, 0, 0, time.UTC), date)

	state, err := GetValue[string](r, "BillingState")
	require.NoError(t, err)
	assert.Equal(t, "AB", state)

	total, err := GetValue[float64](r, "Total")
	require.NoError(t, err)
	assert.InDelta(t, 1.98, total, 1e-9)

	raw, err := GetValue[any](r, "Total")
	require.NoError(t, err)
	assert.Equal(t, 1.98, raw)
}

func TestGetValue_Null(t *testing.T) {
	r := row([]string{"BillingState"}, nil)

	ptr, err := GetValue[*string](r, "BillingState")
	require.NoError(t, err)
	assert.Nil(t, ptr)

	ns, err := GetValue[sql.NullString](r, "BillingState")
	require.NoError(t, err)
	assert.False(t, ns.Valid)

	_, err = GetValue[string](r, "BillingState")
	assert.True(t, stdErrors.Is(err, errors.ErrNullAssignment))

	var raw any
	require.NotPanics(t, func() {
		raw, err = GetValue[any](row([]string{"ReportsTo"}, nil), "ReportsTo")
	})
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestGetValue_Errors(t *testing.T) {
	r := invoiceRow()

	_, err := GetValue[int](r, "")
	assert.True(t, stdErrors.Is(err, errors.ErrArgumentNull))

	_, err = GetValue[int](nil, "InvoiceId")
	assert.True(t, stdErrors.Is(err, errors.ErrArgumentNull))

	_, err = GetValue[int](r, "ShippingState")
	assert.True(t, stdErrors.Is(err, errors.ErrFieldNotFound))
	field, _ := errors.DetailOf(err, errors.DetailField)
	assert.Equal(t, "ShippingState", field)

	_, err = GetValue[int](r, "BillingState")
	require.Error(t, err)
	assert.True(t, stdErrors.Is(err, errors.ErrInvalidCast))
	assert.Contains(t, err.Error(), "BillingState")

	var appErr *errors.AppError
	require.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, "BillingState", appErr.Details()[errors.DetailField])
	assert.Equal(t, "string", appErr.Details()[errors.DetailSourceType])
	assert.Equal(t, "int", appErr.Details()[errors.DetailTargetType])
}

func TestColumnOrdinals(t *testing.T) {
	r := newFakeReader([]string{"Id", "Name", "name", "TOTAL"})

	assert.Equal(t, map[string]int{"id": 0, "name": 1, "total": 3}, ColumnOrdinals(r))
}

func TestConvertValue(t *testing.T) {
	n, err := ConvertValue[int32]("count", int64(347))
	require.NoError(t, err)
	assert.Equal(t, int32(347), n)

	ptr, err := ConvertValue[*int64]("count", nil)
	require.NoError(t, err)
	assert.Nil(t, ptr)

	_, err = ConvertValue[int64]("count", nil)
	assert.True(t, stdErrors.Is(err, errors.ErrNullAssignment))

	_, err = ConvertValue[bool]("flag", "maybe")
	assert.True(t, stdErrors.Is(err, errors.ErrInvalidCast))
	field, _ := errors.DetailOf(err, errors.DetailField)
	assert.Equal(t, "flag", field)

	raw, err := ConvertValue[any]("scalar", nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	code, err := ConvertValue[int]("PostalCode", "010")
	require.NoError(t, err)
	assert.Equal(t, 10, code)

	code, err = ConvertValue[int]("PostalCode", []byte(" 09 "))
	require.NoError(t, err)
	assert.Equal(t, 9, code)

	for _, text := range []string{"0x1F", "0b11", "1_000"} {
		_, err = ConvertValue[int64]("PostalCode", text)
		assert.True(t, stdErrors.Is(err, errors.ErrInvalidCast), "%q: %v", text, err)
		_, err = ConvertValue[uint32]("PostalCode", text)
		assert.True(t, stdErrors.Is(err, errors.ErrInvalidCast), "%q: %v", text, err)
	}
}
