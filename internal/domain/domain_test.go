package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	cases := map[string]Role{
		"customer":     Customer,
		"End Customer": Customer,
		"RETAILER":     Retailer,
		" wholesaler ": Wholesaler,
		"Manufacturer": Manufacturer,
	}
	for in, want := range cases {
		got, err := ParseRole(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseRole("admin")
	require.True(t, errors.Is(err, ErrUnknownRole))
}

func TestRoleSupplierChain(t *testing.T) {
	t.Parallel()

	sup, ok := Customer.Supplier()
	require.True(t, ok)
	require.Equal(t, Retailer, sup)

	sup, ok = Retailer.Supplier()
	require.True(t, ok)
	require.Equal(t, Wholesaler, sup)

	sup, ok = Wholesaler.Supplier()
	require.True(t, ok)
	require.Equal(t, Manufacturer, sup)

	_, ok = Manufacturer.Supplier()
	require.False(t, ok)

	require.False(t, Customer.Sells())
	require.True(t, Manufacturer.Sells())
}

func TestRoleScanRoundTrip(t *testing.T) {
	t.Parallel()

	v, err := Wholesaler.Value()
	require.NoError(t, err)
	var r Role
	require.NoError(t, r.Scan([]byte(v.(string))))
	require.Equal(t, Wholesaler, r)

	_, err = RoleNone.Value()
	require.Error(t, err)
}

func TestOrderStatusTransitions(t *testing.T) {
	t.Parallel()

	require.True(t, StatusPending.CanTransition(StatusApproved))
	require.True(t, StatusPending.CanTransition(StatusRejected))
	require.False(t, StatusPending.CanTransition(StatusFulfilled))
	require.True(t, StatusApproved.CanTransition(StatusFulfilled))
	require.True(t, StatusApproved.CanTransition(StatusRejected))

	for _, s := range []OrderStatus{StatusRejected, StatusFulfilled} {
		require.True(t, s.Terminal())
		for _, next := range Statuses {
			require.False(t, s.CanTransition(next), "%s -> %s", s, next)
		}
	}
}
