package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/facturaja/facturaja-bff/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_DecodesNumbersAndStrings(t *testing.T) {
	cases := []struct {
		raw  string
		want domain.ID
	}{
		{`42`, "42"},
		{`"42"`, "42"},
		{`"inv-001"`, "inv-001"},
		{`9007199254740993`, "9007199254740993"},
		{`null`, ""},
	}
	for _, tc := range cases {
		var id domain.ID
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &id), tc.raw)
		assert.Equal(t, tc.want, id, tc.raw)
	}
}

func TestID_RejectsOtherJSON(t *testing.T) {
	for _, raw := range []string{`true`, `{"id":1}`, `[1]`} {
		var id domain.ID
		assert.Error(t, json.Unmarshal([]byte(raw), &id), raw)
	}
}

func TestID_EncodesAsString(t *testing.T) {
	raw, err := json.Marshal(domain.Invoice{ID: "42"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":"42"`)
}

func TestID_LaravelPayload(t *testing.T) {
	payload := `[{"id":7,"reference":"REF-7","status":"Reconciled","invoiceId":42,"amount":1500,"method":"PIX","date":"2024-03-01T00:00:00Z"},
		{"id":8,"reference":"REF-8","status":"Pending","invoiceId":null,"amount":20,"method":"Card","date":"2024-03-02T00:00:00Z"}]`

	var payments []domain.Payment
	require.NoError(t, json.Unmarshal([]byte(payload), &payments))
	require.Len(t, payments, 2)

	assert.Equal(t, domain.ID("7"), payments[0].ID)
	require.NotNil(t, payments[0].InvoiceID)
	assert.Equal(t, domain.ID("42"), *payments[0].InvoiceID)
	assert.Nil(t, payments[1].InvoiceID)

	var req domain.ReconcileRequest
	require.NoError(t, json.Unmarshal([]byte(`{"invoiceId":42}`), &req))
	assert.Equal(t, domain.ID("42"), req.InvoiceID)
}
