package patients

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSearchFilter_StripsPhoneFormatting(t *testing.T) {
	or := searchFilter("21 98765-4321")

	// "21 98765-4321" must match a contact stored as "21987654321"
	contact := or[1]["contacts.value"].(primitive.Regex)
	assert.Equal(t, "21987654321", contact.Pattern)
	assert.Equal(t, "i", contact.Options)

	// the name branch keeps the term as typed
	name := or[0]["personal_info.name"].(primitive.Regex)
	assert.Equal(t, "21 98765-4321", name.Pattern)
}

func TestSearchFilter_NormalizedCPFBranch(t *testing.T) {
	or := searchFilter("123.456.789-01")

	assert.Len(t, or, 3)
	assert.Equal(t, bson.M{"personal_info.cpf": "12345678901"}, or[2])
}

func TestSearchFilter_NameOnlyTermSkipsCPF(t *testing.T) {
	or := searchFilter("Ana Costa")

	assert.Len(t, or, 2)
	for _, branch := range or {
		assert.NotContains(t, branch, "personal_info.cpf")
	}
}
