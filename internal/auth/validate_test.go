package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterInputValidate(t *testing.T) {
	valid := RegisterInput{
		Email:    "alice@x.com",
		Username: "alice",
		Password: "secret123",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"missing email", func(in *RegisterInput) { in.Email = "" }, "email"},
		{"malformed email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short username", func(in *RegisterInput) { in.Username = "ab" }, "username"},
		{"long username", func(in *RegisterInput) { in.Username = strings.Repeat("a", 51) }, "username"},
		{"non-alphanumeric username", func(in *RegisterInput) { in.Username = "al ice!" }, "username"},
		{"short password", func(in *RegisterInput) { in.Password = "short" }, "password"},
		{"long password", func(in *RegisterInput) { in.Password = strings.Repeat("p", 129) }, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := in.Validate()
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestRegisterInputValidateReportsEveryField(t *testing.T) {
	in := RegisterInput{Email: "nope", Username: "!", Password: "x"}
	err := in.Validate()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3, "all failures reported at once, not just the first")
}

func TestUpdateInputValidateSkipsNilFields(t *testing.T) {
	assert.NoError(t, UpdateInput{}.Validate())

	bad := "x"
	err := UpdateInput{Password: &bad}.Validate()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "password", verrs[0].Field)
}
