package osmsource

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/transit-tools/subway-validator/model"
)

func TestComposeQueryIncludesEachBBoxAndMode(t *testing.T) {
	bboxes := []model.BBox{{MinLon: 13.0, MinLat: 52.0, MaxLon: 14.0, MaxLat: 53.0}}
	query := ComposeQuery(false, []string{"subway", "light_rail"}, bboxes)

	require.Contains(t, query, `rel[route="light_rail"]`)
	require.Contains(t, query, `rel[route="subway"]`)
	require.Contains(t, query, "52,13,53,14")
	require.Contains(t, query, "node[railway=subway_entrance]")
	require.Contains(t, query, "node[railway=train_station_entrance]")
	require.Contains(t, query, "rel[public_transport=stop_area]")
}

func TestComposeQueryOvergroundOmitsEntrances(t *testing.T) {
	bboxes := []model.BBox{{MinLon: 0, MinLat: 0, MaxLon: 1, MaxLat: 1}}
	query := ComposeQuery(true, []string{"tram"}, bboxes)
	require.NotContains(t, query, "subway_entrance")
	require.NotContains(t, query, "train_station_entrance")
}

func TestComposeQuerySortsModes(t *testing.T) {
	bboxes := []model.BBox{{MinLon: 0, MinLat: 0, MaxLon: 1, MaxLat: 1}}
	query := ComposeQuery(false, []string{"tram", "bus"}, bboxes)
	busIdx := indexOf(query, `rel[route="bus"]`)
	tramIdx := indexOf(query, `rel[route="tram"]`)
	require.Greater(t, busIdx, -1)
	require.Greater(t, tramIdx, -1)
	require.Less(t, busIdx, tramIdx)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func TestIsRetryableStatus(t *testing.T) {
	require.True(t, isRetryableStatus(fasthttp.StatusTooManyRequests))
	require.True(t, isRetryableStatus(fasthttp.StatusBadGateway))
	require.False(t, isRetryableStatus(fasthttp.StatusNotFound))
	require.False(t, isRetryableStatus(fasthttp.StatusOK))
}

func TestMergeElementsPassesThroughEmptySides(t *testing.T) {
	require.Equal(t, []byte("a"), mergeElements(nil, []byte("a")))
	require.Equal(t, []byte("a"), mergeElements([]byte("a"), nil))
}
