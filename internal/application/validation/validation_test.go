package validation

import (
	"testing"

	"github.com/qms/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Code   string `json:"code" validate:"required,max=5"`
	Email  string `json:"email" validate:"omitempty,email"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name  string
		req   sampleRequest
		field string
		code  string
	}{
		{"missing code", sampleRequest{}, "code", "REQUIRED"},
		{"code too long", sampleRequest{Code: "ABCDEFG"}, "code", "INVALID_INPUT"},
		{"bad email", sampleRequest{Code: "A", Email: "x"}, "email", "INVALID_INPUT"},
		{"bad status", sampleRequest{Code: "A", Status: "gone"}, "status", "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.req)
			var ve *shared.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.code, ve.Code)
		})
	}

	assert.NoError(t, Struct(sampleRequest{Code: "A", Email: "a@b.co", Status: "active"}))
}
