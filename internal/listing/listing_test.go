package listing

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Listing{Title: "Stol", Price: 200, Platform: PlatformFinn, OriginalURL: "https://www.finn.no/item/1"})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"title":"Stol","description":"","price":200,"images":[],
		"seller":"","adId":"","platform":"finn","originalUrl":"https://www.finn.no/item/1"
	}`, string(data))
}

func TestListing_PrimaryImage(t *testing.T) {
	assert.Empty(t, Listing{}.PrimaryImage())
	assert.Equal(t, "a.jpg", Listing{Images: []string{"a.jpg", "b.jpg"}}.PrimaryImage())
}

func TestPlatform_DisplayName(t *testing.T) {
	assert.Equal(t, "FINN.no", PlatformFinn.DisplayName())
	assert.Equal(t, "Tise", PlatformTise.DisplayName())
	assert.Equal(t, "Ukjent", PlatformUnknown.DisplayName())
	assert.Equal(t, "tise", PlatformTise.String())
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"empty input", &InvalidInputError{}, "URL er påkrevd"},
		{"malformed input", &InvalidInputError{Input: "finn.no", Reason: "relative"}, "Ugyldig URL-format"},
		{"unsupported", &UnsupportedPlatformError{URL: "https://ebay.com"}, "Ukjent plattform. Støtter kun Finn.no og Tise."},
		{"fetch status", &FetchError{Status: 404}, "Kunne ikke hente annonsen: 404"},
		{"fetch transport", &FetchError{Err: errors.New("timeout")}, "Kunne ikke hente annonsen"},
		{"wrapped", fmt.Errorf("scrape: %w", &FetchError{Status: 500}), "Kunne ikke hente annonsen: 500"},
		{"other", errors.New("boom"), "En ukjent feil oppstod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestFetchError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &FetchError{URL: "https://www.finn.no/item/1", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "fetch https://www.finn.no/item/1: connection refused", err.Error())
	assert.Equal(t, "fetch https://www.finn.no/item/1: status 502", (&FetchError{URL: "https://www.finn.no/item/1", Status: 502}).Error())
}
