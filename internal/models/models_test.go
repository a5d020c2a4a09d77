package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRecord_KeepsNumberPrecision(t *testing.T) {
	t.Parallel()

	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"price":19.10,"isActive":true,"brandName":null}`), &r))

	id, ok := r.ID()
	require.True(t, ok)
	require.Equal(t, int64(7), id)
	require.Equal(t, "19.10", r.String("price"))
	require.True(t, r.Bool("isActive"))
	require.Equal(t, "", r.String("brandName"))
	require.Equal(t, "", r.String("missing"))
}

func TestRecord_ID_Missing(t *testing.T) {
	t.Parallel()

	_, ok := Record{"name": "x"}.ID()
	require.False(t, ok)
}

func TestPage_Decode(t *testing.T) {
	t.Parallel()

	var p Page[Record]
	require.NoError(t, json.Unmarshal([]byte(`{"content":[{"id":1},{"id":2}],"number":1,"totalPages":4}`), &p))
	require.Len(t, p.Content, 2)
	require.Equal(t, 1, p.Number)
	require.Equal(t, 4, p.TotalPages)
}

func TestLocalTime_Formats(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		in   string
		want time.Time
	}{
		{`"2024-03-01T10:20:30"`, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{`"2024-03-01T10:20:30.123456"`, time.Date(2024, 3, 1, 10, 20, 30, 123456000, time.UTC)},
		{`"2024-03-01T10:20"`, time.Date(2024, 3, 1, 10, 20, 0, 0, time.UTC)},
	}

	for _, tc := range tcs {
		var lt LocalTime
		require.NoError(t, json.Unmarshal([]byte(tc.in), &lt))
		require.True(t, tc.want.Equal(lt.Time), tc.in)
	}

	var zero LocalTime
	require.NoError(t, json.Unmarshal([]byte(`null`), &zero))
	require.True(t, zero.IsZero())

	require.Error(t, json.Unmarshal([]byte(`"yesterday"`), &zero))
}

func TestCartItem_LineTotal(t *testing.T) {
	t.Parallel()

	it := CartItem{Quantity: 3, Product: Product{Price: decimal.RequireFromString("0.10")}}
	require.Equal(t, "0.30", it.LineTotal().StringFixed(2))
}

func TestUserInfo_IsAdmin(t *testing.T) {
	t.Parallel()

	require.True(t, UserInfo{Authenticated: true, Roles: []string{"ROLE_USER", RoleAdmin}}.IsAdmin())
	require.False(t, UserInfo{Authenticated: true, Roles: []string{"ROLE_USER"}}.IsAdmin())
}
