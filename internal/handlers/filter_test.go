package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/errors"
)

func TestParseFilter(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/kpis?from=2024-01-01&to=2024-01-31&region=North&region=+South+&region=&customer_type=Retail&top_n=3", nil)

	f, topN, err := parseFilter(r, 5)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 1), f.From)
	assert.Equal(t, day(2024, 1, 31), f.To)
	assert.Equal(t, []string{"North", "South"}, f.Regions)
	assert.Equal(t, []string{"Retail"}, f.CustomerTypes)
	assert.Equal(t, 3, topN)
}

func TestParseFilter_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/kpis", nil)

	f, topN, err := parseFilter(r, 5)
	require.NoError(t, err)
	assert.True(t, f.IsEmpty())
	assert.Equal(t, 5, topN)
}

func TestParseFilter_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad from date", "from=01/02/2024"},
		{"bad to date", "to=2024-13-01"},
		{"non-integer top_n", "top_n=ten"},
		{"negative top_n", "top_n=-1"},
		{"top_n too large", "top_n=5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/kpis?"+tt.query, nil)
			_, _, err := parseFilter(r, 5)

			var appErr *errors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, errors.CodeValidation, appErr.Code)
			assert.NotNil(t, appErr.Details)
		})
	}
}
