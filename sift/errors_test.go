package sift

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigurationError(t *testing.T) {
	err := &ConfigurationError{Field: "api_key", Message: "required"}
	assert.Equal(t, "sift configuration error: api_key: required", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.False(t, errors.Is(err, ErrRequestFailed))

	err = &ConfigurationError{Message: "bad"}
	assert.Equal(t, "sift configuration error: bad", err.Error())
}

func TestRequestFailure(t *testing.T) {
	t.Run("Error message", func(t *testing.T) {
		err := &RequestFailure{Code: 404, Message: "Not Found"}
		assert.Equal(t, "sift request failed: code 404: Not Found", err.Error())

		err = &RequestFailure{Code: 500}
		assert.Equal(t, "sift request failed: code 500", err.Error())
	})

	t.Run("HasResponse", func(t *testing.T) {
		assert.True(t, (&RequestFailure{Code: 400}).HasResponse())
		assert.False(t, (&RequestFailure{Code: NoResponseCode}).HasResponse())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		assert.True(t, (&RequestFailure{Code: 404}).IsNotFound())
		assert.False(t, (&RequestFailure{Code: 500}).IsNotFound())
	})

	t.Run("IsUnauthorized", func(t *testing.T) {
		tests := []struct {
			code     int
			expected bool
		}{
			{401, true},
			{403, true},
			{404, false},
			{-1, false},
		}

		for _, tt := range tests {
			err := &RequestFailure{Code: tt.code}
			assert.Equal(t, tt.expected, err.IsUnauthorized())
		}
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := errors.New("dial tcp: refused")
		err := fmt.Errorf("wrapped: %w", newRequestFailure(DefaultFailureMessage, NoResponseCode, cause))
		assert.True(t, errors.Is(err, cause))
		assert.True(t, errors.Is(err, ErrRequestFailed))

		code, ok := FailureCode(err)
		assert.True(t, ok)
		assert.Equal(t, NoResponseCode, code)
	})

	t.Run("FailureCode without failure", func(t *testing.T) {
		_, ok := FailureCode(errors.New("plain"))
		assert.False(t, ok)
	})
}

func TestEnvelopeAccessors(t *testing.T) {
	env := Envelope{"code": float64(200), "message": "Success", "result": []any{
		map[string]any{"sift_id": float64(1), "domain": "flight", "payload": map[string]any{"@type": "FlightReservation"}},
	}}
	assert.Equal(t, 200, env.Code())
	assert.Equal(t, "Success", env.Message())

	var sifts []Sift
	assert.NoError(t, env.DecodeResult(&sifts))
	if assert.Len(t, sifts, 1) {
		assert.Equal(t, int64(1), sifts[0].SiftID)
		assert.Equal(t, "flight", sifts[0].Domain)
		assert.Equal(t, "FlightReservation", sifts[0].Type())
	}

	assert.Equal(t, 200, Envelope{"code": "200"}.Code())
	assert.Equal(t, 404, Envelope{"code": json.Number("404")}.Code())
	assert.Equal(t, 200, Envelope{"code": json.Number("200.0")}.Code())
	assert.Equal(t, 0, Envelope{"code": json.Number("abc")}.Code())
	assert.Equal(t, 0, Envelope{}.Code())
	assert.Equal(t, "", Envelope{"message": 5}.Message())
	assert.Error(t, Envelope{}.DecodeResult(&sifts))
}
