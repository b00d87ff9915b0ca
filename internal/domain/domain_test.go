package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Elegant  Kurta!!":     "elegant-kurta",
		"  ABC---123  ":        "abc-123",
		"Silk Saree (Red)":     "silk-saree-red",
		"Winter\tCoat\nLong":   "winter-coat-long",
		"Linen - Summer Shirt": "linen-summer-shirt",
		"Kurta !":              "kurta",
		"Kurta -":              "kurta",
		"- Kurta":              "kurta",
		"!!!":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestSlugify_SameNormalFormCollides(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Slugify("Elegant Kurta"), Slugify("elegant   KURTA!"))
}

func TestNeedsNewSlug(t *testing.T) {
	t.Parallel()

	assert.True(t, NeedsNewSlug("a", "b", "a"))
	assert.True(t, NeedsNewSlug("a", "a", ""))
	assert.False(t, NeedsNewSlug("a", "a", "a"))
}

func TestOrderStatus_ForwardOnly(t *testing.T) {
	t.Parallel()

	allowed := [][2]OrderStatus{
		{StatusPending, StatusProcessing},
		{StatusProcessing, StatusShipped},
		{StatusShipped, StatusDelivered},
		{StatusPending, StatusCancelled},
		{StatusProcessing, StatusCancelled},
	}
	for _, p := range allowed {
		assert.True(t, p[0].CanTransitionTo(p[1]), "%s -> %s", p[0], p[1])
	}

	rejected := [][2]OrderStatus{
		{StatusDelivered, StatusPending},
		{StatusShipped, StatusProcessing},
		{StatusShipped, StatusCancelled},
		{StatusDelivered, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
	}
	for _, p := range rejected {
		assert.False(t, p[0].CanTransitionTo(p[1]), "%s -> %s", p[0], p[1])
	}
}

func TestCheckTransition(t *testing.T) {
	t.Parallel()

	require.NoError(t, CheckTransition(StatusPending, StatusProcessing, ""))
	require.NoError(t, CheckTransition(StatusProcessing, StatusShipped, "TRK-1"))
	require.NoError(t, CheckTransition(StatusShipped, StatusShipped, "TRK-2"))

	assert.ErrorIs(t, CheckTransition(StatusDelivered, StatusPending, ""), ErrInvalidTransition)
	assert.ErrorIs(t, CheckTransition(StatusShipped, StatusShipped, ""), ErrInvalidTransition)
	assert.ErrorIs(t, CheckTransition(StatusPending, StatusProcessing, "TRK-1"), ErrValidation)
	assert.ErrorIs(t, CheckTransition(StatusPending, OrderStatus("Lost"), ""), ErrValidation)
}

func TestValidateSizes(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSizes([]Size{SizeS, SizeXXL}))
	assert.ErrorIs(t, ValidateSizes([]Size{"XXXL"}), ErrValidation)
	assert.ErrorIs(t, ValidateSizes([]Size{SizeM, SizeM}), ErrValidation)
}

func TestAddress_Validate(t *testing.T) {
	t.Parallel()

	a := Address{FullName: "A B", Address: "1 Main", City: "Pune", PostalCode: "411001", Country: "IN", Phone: "123"}
	require.NoError(t, a.Validate())

	a.City = "  "
	err := a.Validate()
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "city")
}

func TestEnums(t *testing.T) {
	t.Parallel()

	assert.True(t, CategoryBridal.Valid())
	assert.False(t, Category("Sports").Valid())
	assert.True(t, SourceOutfitBox.Valid())
	assert.False(t, SubscriptionSource("sms").Valid())
	assert.Equal(t, "a@b.co", NormalizeEmail("  A@B.co "))
}
