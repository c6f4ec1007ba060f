package contact_test

import (
	"strings"
	"testing"

	"obsidiana-backend/internal/contact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequired(t *testing.T) {
	for _, f := range contact.Fields {
		for _, v := range []string{"", "   ", "\t\n "} {
			err := contact.Validate(f, v)
			require.NotNil(t, err, "field %s value %q", f, v)
			assert.Equal(t, contact.ReasonRequired, err.Reason)
			assert.NotEmpty(t, err.Message)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	err := contact.Validate(contact.FieldEmail, "not-an-email")
	require.NotNil(t, err)
	assert.Equal(t, contact.ReasonInvalidFormat, err.Reason)
	assert.Equal(t, "Por favor ingresa un email válido", err.Message)

	assert.Nil(t, contact.Validate(contact.FieldEmail, "a@b.co"))
	assert.Nil(t, contact.Validate(contact.FieldEmail, "  a@b.co  "))

	for _, bad := range []string{"a@b", "a b@c.de", "@b.co", "a@@b.co", "a@b."} {
		assert.NotNil(t, contact.Validate(contact.FieldEmail, bad), bad)
	}
}

func TestValidateMinLength(t *testing.T) {
	tests := []struct {
		field contact.Field
		short string
		ok    string
	}{
		{contact.FieldName, "A", "Al"},
		{contact.FieldSubject, "Ho", "Hol"},
		{contact.FieldMessage, "123456789", "1234567890"},
		{contact.FieldMessage, "   123456789   ", "   1234567890   "},
	}
	for _, tt := range tests {
		err := contact.Validate(tt.field, tt.short)
		require.NotNil(t, err, "%s %q", tt.field, tt.short)
		assert.Equal(t, contact.ReasonTooShort, err.Reason)
		assert.Nil(t, contact.Validate(tt.field, tt.ok), "%s %q", tt.field, tt.ok)
	}
}

func TestValidateCountsCodePoints(t *testing.T) {
	// "Ñu" is two code points but three bytes.
	assert.Nil(t, contact.Validate(contact.FieldName, "Ñu"))
	assert.NotNil(t, contact.Validate(contact.FieldMessage, strings.Repeat("é", 9)))
	assert.Nil(t, contact.Validate(contact.FieldMessage, strings.Repeat("é", 10)))
}

func TestParseField(t *testing.T) {
	f, err := contact.ParseField(" Email ")
	require.NoError(t, err)
	assert.Equal(t, contact.FieldEmail, f)

	_, err = contact.ParseField("phone")
	assert.ErrorIs(t, err, contact.ErrUnknownField)
}

func TestValidateInput(t *testing.T) {
	errs := contact.ValidateInput(contact.Input{Name: "A", Email: "x", Subject: "", Message: "long enough message"})
	require.Len(t, errs, 3)
	byField := errs.ByField()
	assert.Equal(t, contact.ReasonTooShort, byField[contact.FieldName].Reason)
	assert.Equal(t, contact.ReasonInvalidFormat, byField[contact.FieldEmail].Reason)
	assert.Equal(t, contact.ReasonRequired, byField[contact.FieldSubject].Reason)
	assert.Contains(t, errs.Error(), "name: too_short")
}
