package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transit-tools/subway-validator/types"
)

func testReport() *types.ValidationReport {
	return &types.ValidationReport{
		RunID:       "test-run-1",
		GeneratedAt: "2026-08-01T00:00:00Z",
		Cities: []types.CityValidationResult{
			{
				Name: "Berlin", Country: "Germany", Continent: "Europe",
				IsGood: true, StationsFound: 173, StationsExpected: 173,
				TransfersFound: 12, TransfersExpected: 12,
				Warnings: []types.ValidationIssue{{Severity: types.WARNING, Message: "Stop area has no name"}},
			},
			{
				Name: "Paris", Country: "France", Continent: "Europe",
				IsGood: false, StationsFound: 280, StationsExpected: 303,
				Errors: []types.ValidationIssue{{Severity: types.ERROR, Message: "Route has no stops"}},
			},
		},
	}
}

func TestHTMLReporterGenerateHTML(t *testing.T) {
	reporter := NewHTMLReporter()
	html, err := reporter.GenerateHTML(testReport())
	require.NoError(t, err)

	for _, want := range []string{
		"<!DOCTYPE html>", "<html", "<body>",
		"test-run-1", "Berlin", "Paris",
		"Stop area has no name", "Route has no stops",
	} {
		require.Contains(t, html, want)
	}
}

func TestHTMLReporterSummaryCounts(t *testing.T) {
	reporter := NewHTMLReporter()
	html, err := reporter.GenerateHTML(testReport())
	require.NoError(t, err)
	require.True(t, strings.Contains(html, "1 / 2"), "expected 1 of 2 cities passed summary")
}

func TestSeverityClassAndIcon(t *testing.T) {
	require.Equal(t, "error", severityClass(types.ERROR))
	require.Equal(t, "warning", severityClass(types.WARNING))
	require.Equal(t, "notice", severityClass(types.NOTICE))
	require.Equal(t, "critical", severityClass(types.CRITICAL))
	require.NotEmpty(t, severityIcon(types.ERROR))
}
