package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_Totals(t *testing.T) {
	c := Cart{Items: []LineItem{
		{Product: Product{ID: 1, Price: decimal.NewFromInt(1000)}, Quantity: 2},
		{Product: Product{ID: 2, Price: decimal.RequireFromString("499.5")}, Quantity: 3},
	}}

	assert.True(t, c.Total().Equal(decimal.RequireFromString("3498.5")))
	assert.Equal(t, 5, c.ItemCount())
	assert.False(t, c.IsEmpty())
	assert.True(t, Cart{}.Total().IsZero())
	assert.True(t, Cart{}.IsEmpty())

	clone := c.Clone()
	clone.Items[0].Quantity = 9
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestLineItem_JSONLayout(t *testing.T) {
	item := LineItem{Product: Product{ID: 3, Name: "Pan", Price: decimal.NewFromInt(1000), Stock: 4}, Quantity: 2}

	raw, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"nombre":"Pan","precio":"1000","stock":4,"cantidad":2}`, string(raw))
}

func TestProduct_PriceDecoding(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "string", body: `{"precio": "1000.00"}`, want: "1000"},
		{name: "number", body: `{"precio": 1500}`, want: "1500"},
		{name: "fraction", body: `{"precio": 12.5}`, want: "12.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Product
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			assert.True(t, p.Price.Equal(decimal.RequireFromString(tt.want)), "got %s", p.Price)
		})
	}
}

func TestProductRef_UnmarshalJSON(t *testing.T) {
	var d OrderDetail
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"producto":7,"cantidad":2}`), &d))
	assert.Equal(t, int64(7), d.Product.ID)
	assert.Nil(t, d.Product.Product)
	assert.False(t, d.Product.Resolved())

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"producto":{"id":8,"nombre":"Vino","precio":"10","imagen":"/m/v.png"}}`), &d))
	assert.Equal(t, int64(8), d.Product.ID)
	require.NotNil(t, d.Product.Product)
	assert.Equal(t, "Vino", d.Product.Product.Name)
	assert.True(t, d.Product.Resolved())

	require.NoError(t, json.Unmarshal([]byte(`{"producto":{"id":9,"nombre":"Sin foto"}}`), &d))
	assert.False(t, d.Product.Resolved(), "an embedded product without image is fetched again")

	assert.Error(t, json.Unmarshal([]byte(`{"producto":"x"}`), &d))
}

func TestProductRef_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(ProductRef{ID: 4})
	require.NoError(t, err)
	assert.Equal(t, "4", string(raw))

	raw, err = json.Marshal(ProductRef{ID: 4, Product: &Product{ID: 4, Name: "Pan"}})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"nombre":"Pan"`)
}

func TestProductFilter_Values(t *testing.T) {
	lo, hi := decimal.NewFromInt(100), decimal.RequireFromString("2500.5")

	assert.Empty(t, ProductFilter{}.Values())

	v := ProductFilter{
		Page:     2,
		Search:   "pan integral",
		Ordering: OrderByPriceDesc,
		MinPrice: &lo,
		MaxPrice: &hi,
		InStock:  true,
	}.Values()

	assert.Equal(t, "2", v.Get("page"))
	assert.Equal(t, "pan integral", v.Get("search"))
	assert.Equal(t, "-precio", v.Get("ordering"))
	assert.Equal(t, "100", v.Get("min_price"))
	assert.Equal(t, "2500.5", v.Get("max_price"))
	assert.Equal(t, "0", v.Get("stock__gt"))
}

func TestOrder_Decoding(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"cliente":50,"fecha":"2024-05-01T13:45:10.123456Z","estado":"en_proceso","total":"2500.00"}`), &o))
	assert.Equal(t, int64(50), o.ClientID)
	assert.Equal(t, OrderInProgress, o.Status)
	assert.Equal(t, "In progress", o.Status.Label())
	assert.Equal(t, 2024, o.Date.Year())
	assert.True(t, o.Total.Equal(decimal.NewFromInt(2500)))
}

func TestOrder_DateFormats(t *testing.T) {
	tests := []struct {
		name string
		date string
		want time.Time
	}{
		{name: "rfc3339 with zone", date: `"2024-05-01T10:00:00-03:00"`, want: time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)},
		{name: "iso without zone", date: `"2024-05-01T10:00:00.123456"`, want: time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC)},
		{name: "space separated", date: `"2024-05-01 10:00:00"`, want: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{name: "date only", date: `"2024-05-01"`, want: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{name: "null", date: `null`},
		{name: "empty", date: `""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Order
			require.NoError(t, json.Unmarshal([]byte(`{"id":3,"cliente":50,"fecha":`+tt.date+`,"estado":"pendiente","total":"10.00"}`), &o))
			assert.True(t, tt.want.Equal(o.Date), "got %s", o.Date)
			assert.Equal(t, int64(3), o.ID)
			assert.Equal(t, OrderPending, o.Status)
		})
	}
}

func TestOrder_BadDate(t *testing.T) {
	var o Order
	err := json.Unmarshal([]byte(`{"id":3,"fecha":"yesterday"}`), &o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized order date")
}

func TestOrderStatus_Label(t *testing.T) {
	assert.Equal(t, "Pending", OrderPending.Label())
	assert.Equal(t, "Completed", OrderCompleted.Label())
	assert.Equal(t, "Cancelled", OrderCancelled.Label())
	assert.Equal(t, "devuelto", OrderStatus("devuelto").Label())
}

func TestSession(t *testing.T) {
	var s Session
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsClient())
	_, ok := s.ClientID()
	assert.False(t, ok)
	assert.Equal(t, "uninitialized", s.State.String())

	s.Identity = &Identity{User: User{Username: "ana"}}
	assert.True(t, s.IsAuthenticated())
	assert.False(t, s.IsClient())

	s.Identity.Client = &Client{ID: 50}
	id, ok := s.ClientID()
	assert.True(t, ok)
	assert.Equal(t, int64(50), id)
}

func TestAccessClaims_Expired(t *testing.T) {
	now := time.Now()
	assert.False(t, AccessClaims{}.Expired(now))
	assert.False(t, AccessClaims{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, AccessClaims{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
}
