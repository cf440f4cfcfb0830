package output

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/transit-tools/subway-validator/types"
)

// HTMLReporter renders a types.ValidationReport as a single self-contained
// HTML page, grouping each city's issues by severity for quick scanning
// (subways' text/markdown summary, reworked as the teacher's tabbed report).
type HTMLReporter struct {
	template *template.Template
}

// NewHTMLReporter compiles the report template once for reuse.
func NewHTMLReporter() *HTMLReporter {
	tmpl := template.Must(template.New("validation_report").Funcs(template.FuncMap{
		"severityClass": severityClass,
		"severityIcon":  severityIcon,
		"lower":         strings.ToLower,
	}).Parse(htmlTemplate))

	return &HTMLReporter{template: tmpl}
}

// GenerateHTML renders report into a complete HTML document.
func (r *HTMLReporter) GenerateHTML(report *types.ValidationReport) (string, error) {
	data := prepareTemplateData(report)

	var buf strings.Builder
	if err := r.template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("output: executing html report template: %w", err)
	}
	return buf.String(), nil
}

// htmlTemplateData is everything the template range/if clauses touch.
type htmlTemplateData struct {
	Report       *types.ValidationReport
	Cities       []cityReportData
	TotalCities  int
	GoodCities   int
	TotalErrors  int
	TotalWarn    int
	TotalNotices int
}

type cityReportData struct {
	types.CityValidationResult
	StationSummary  string
	TransferSummary string
}

func prepareTemplateData(report *types.ValidationReport) *htmlTemplateData {
	data := &htmlTemplateData{Report: report, TotalCities: len(report.Cities)}
	for _, c := range report.Cities {
		if c.IsGood {
			data.GoodCities++
		}
		data.TotalErrors += len(c.Errors)
		data.TotalWarn += len(c.Warnings)
		data.TotalNotices += len(c.Notices)
		data.Cities = append(data.Cities, cityReportData{
			CityValidationResult: c,
			StationSummary:       fmt.Sprintf("%d / %d", c.StationsFound, c.StationsExpected),
			TransferSummary:      fmt.Sprintf("%d / %d", c.TransfersFound, c.TransfersExpected),
		})
	}
	return data
}

func severityClass(s types.Severity) string {
	switch s {
	case types.CRITICAL:
		return "critical"
	case types.ERROR:
		return "error"
	case types.WARNING:
		return "warning"
	default:
		return "notice"
	}
}

func severityIcon(s types.Severity) string {
	switch s {
	case types.CRITICAL:
		return "⛔"
	case types.ERROR:
		return "❌"
	case types.WARNING:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1.0"/>
    <title>Transit Network Validation Report</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
            line-height: 1.6;
            color: #333;
            background-color: #f5f5f5;
        }
        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }
        .header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 30px;
            border-radius: 10px;
            margin-bottom: 30px;
            text-align: center;
        }
        .header h1 { font-size: 2.5em; margin-bottom: 10px; }
        .summary-cards {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 20px;
            margin-bottom: 30px;
        }
        .summary-card {
            background: white;
            padding: 25px;
            border-radius: 10px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
            text-align: center;
        }
        .summary-card h3 { font-size: 2.5em; margin-bottom: 10px; }
        .summary-card.cities { border-left: 5px solid #6c7ce7; }
        .summary-card.errors { border-left: 5px solid #dc3545; }
        .summary-card.warnings { border-left: 5px solid #ffc107; }
        .summary-card.notices { border-left: 5px solid #17a2b8; }
        .city-group {
            background: white;
            border-radius: 10px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
            margin-bottom: 20px;
            padding: 25px;
        }
        .city-group h2 { color: #667eea; margin-bottom: 10px; }
        .city-group.bad h2 { color: #dc3545; }
        .city-meta { color: #666; font-size: 14px; margin-bottom: 15px; }
        .issue-list { list-style: none; }
        .issue-item {
            background: #f8f9fa;
            margin-bottom: 10px;
            padding: 12px 16px;
            border-radius: 8px;
            border-left: 4px solid #ddd;
        }
        .issue-item.critical { border-left-color: #dc3545; }
        .issue-item.error { border-left-color: #fd7e14; }
        .issue-item.warning { border-left-color: #ffc107; }
        .issue-item.notice { border-left-color: #17a2b8; }
        .severity-badge {
            padding: 2px 10px;
            border-radius: 20px;
            font-size: 11px;
            font-weight: 600;
            text-transform: uppercase;
            margin-right: 10px;
        }
        .severity-badge.critical { background: #dc3545; color: white; }
        .severity-badge.error { background: #fd7e14; color: white; }
        .severity-badge.warning { background: #ffc107; color: #333; }
        .severity-badge.notice { background: #17a2b8; color: white; }
        .footer { text-align: center; margin-top: 30px; color: #666; font-size: 13px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Transit Network Validation Report</h1>
            <div class="subtitle">{{.Report.RunID}} &middot; {{.Report.GeneratedAt}}</div>
        </div>

        <div class="summary-cards">
            <div class="summary-card cities">
                <h3>{{.GoodCities}} / {{.TotalCities}}</h3>
                <p>Cities Passed</p>
            </div>
            <div class="summary-card errors">
                <h3>{{.TotalErrors}}</h3>
                <p>Errors</p>
            </div>
            <div class="summary-card warnings">
                <h3>{{.TotalWarn}}</h3>
                <p>Warnings</p>
            </div>
            <div class="summary-card notices">
                <h3>{{.TotalNotices}}</h3>
                <p>Notices</p>
            </div>
        </div>

        {{range .Cities}}
        <div class="city-group {{if not .IsGood}}bad{{end}}">
            <h2>{{.Name}} <small>({{.Country}}, {{.Continent}})</small></h2>
            <div class="city-meta">
                Stations {{.StationSummary}} &middot; Interchanges {{.TransferSummary}} &middot; Unused entrances {{.UnusedEntrances}} &middot; Networks observed {{.NetworksObserved}}
            </div>
            <ul class="issue-list">
                {{range .Errors}}
                <li class="issue-item critical"><span class="severity-badge critical">Error</span>{{.Message}}</li>
                {{end}}
                {{range .Warnings}}
                <li class="issue-item warning"><span class="severity-badge warning">Warning</span>{{.Message}}</li>
                {{end}}
                {{range .Notices}}
                <li class="issue-item notice"><span class="severity-badge notice">Notice</span>{{.Message}}</li>
                {{end}}
            </ul>
        </div>
        {{end}}

        <div class="footer">Generated by the transit network validator.</div>
    </div>
</body>
</html>
`
