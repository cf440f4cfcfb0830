package output

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundCoord(t *testing.T) {
	require.InDelta(t, 13.4051234, roundCoord(13.40512339999), 1e-7)
	require.InDelta(t, -13.4051235, roundCoord(-13.40512345), 1e-7)
}

func TestSign(t *testing.T) {
	require.Equal(t, 1.0, sign(0))
	require.Equal(t, 1.0, sign(3))
	require.Equal(t, -1.0, sign(-3))
}

func TestRouteType(t *testing.T) {
	require.Equal(t, "12", routeType("monorail"))
	require.Equal(t, "1", routeType("subway"))
	require.Equal(t, "1", routeType("light_rail"))
}
