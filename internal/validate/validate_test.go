package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	if _, ok := Email("  admin@equiptrack.test "); !ok {
		t.Fatal("expected valid email")
	}
	if _, ok := Email("not-an-email"); ok {
		t.Fatal("expected invalid email")
	}
}

func TestQDropsGarbage(t *testing.T) {
	if got := Q("  Lyon "); got != "Lyon" {
		t.Fatalf("got %q", got)
	}
	if got := Q("<script>"); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestQTruncatesOnRunes(t *testing.T) {
	q := strings.Repeat("a", 49) + "é"
	assert.Equal(t, q, Q(q))
	assert.Equal(t, q, Q(q+"éé"), "long queries are cut to 50 characters, not 50 bytes")
	assert.Equal(t, strings.Repeat("é", 50), Q(strings.Repeat("é", 60)))
}

func TestID(t *testing.T) {
	if n, ok := ID("42"); !ok || n != 42 {
		t.Fatalf("got %d %v", n, ok)
	}
	for _, bad := range []string{"", "0", "-3", "x1"} {
		if _, ok := ID(bad); ok {
			t.Fatalf("%q should be rejected", bad)
		}
	}
}

func TestPassword(t *testing.T) {
	assert.True(t, Password("Passw0rd!"))
	assert.False(t, Password("password"))
	assert.False(t, Password("Sh0rt!"))
}

type sample struct {
	Name     string `form:"name" validate:"required,max=10"`
	Quantity int    `form:"quantity" validate:"gt=0"`
	State    string `form:"state" validate:"oneof=new used damaged"`
}

func TestStruct(t *testing.T) {
	assert.Nil(t, Struct(sample{Name: "Drill", Quantity: 1, State: "new"}))

	errs := Struct(sample{Quantity: 0, State: "broken"})
	assert.Equal(t, "name is required", errs["name"])
	assert.Equal(t, "quantity must be greater than 0", errs["quantity"])
	assert.Contains(t, errs["state"], "state must be one of")
}
