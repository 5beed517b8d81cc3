package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "trims lines and drops empty ones",
			in:   "  John Doe  \n\n   Senior Engineer\n\t\n  Go, Kubernetes  ",
			want: "John Doe\nSenior Engineer\nGo, Kubernetes",
		},
		{
			name: "empty input",
			in:   "   \n \n ",
			want: "",
		},
		{
			name: "already clean",
			in:   "one line",
			want: "one line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestExtractContactInfo(t *testing.T) {
	cv := "John Doe\njohn.doe+jobs@example.co.uk\nPhone: +1 (555) 010-2345\nGo developer"

	email, phone := ExtractContactInfo(cv)
	assert.Equal(t, "john.doe+jobs@example.co.uk", email)
	assert.Equal(t, "+1 (555) 010-2345", phone)
}

func TestExtractContactInfo_MissingFields(t *testing.T) {
	email, phone := ExtractContactInfo("no contact details in this resume")
	assert.Empty(t, email)
	assert.Empty(t, phone)

	email, phone = ExtractContactInfo("only mail: someone@example.com")
	assert.Equal(t, "someone@example.com", email)
	assert.Empty(t, phone)
}
