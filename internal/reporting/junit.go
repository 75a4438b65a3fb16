package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spboyer/taskqa/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one corpus.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one sample.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure is a sample scoring below the keep threshold.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError is a sample whose output failed schema validation.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a test as skipped.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a CorpusOutcome to JUnit XML, one test case per
// sample.
func ConvertToJUnit(outcome *models.CorpusOutcome) *JUnitTestSuites {
	durationSec := float64(outcome.Digest.DurationMs) / 1000.0
	classname := strings.TrimSuffix(filepath.Base(outcome.Source), filepath.Ext(outcome.Source))

	suite := JUnitTestSuite{
		Name:      outcome.Source,
		Tests:     len(outcome.Results),
		Time:      durationSec,
		Timestamp: outcome.Timestamp.Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "run_id", Value: outcome.RunID},
			{Name: "encoder_model", Value: outcome.Setup.EncoderModel},
			{Name: "similarity_threshold", Value: fmt.Sprintf("%g", outcome.Setup.SimilarityThreshold)},
			{Name: "keep_threshold", Value: fmt.Sprintf("%g", outcome.Setup.KeepThreshold)},
			{Name: "mean_score", Value: fmt.Sprintf("%.4f", outcome.Digest.MeanScore)},
		},
	}

	for i := range outcome.Results {
		tc := convertResult(classname, outcome.Setup.KeepThreshold, &outcome.Results[i])
		switch {
		case tc.Error != nil:
			suite.Errors++
		case tc.Failure != nil:
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		Time:       durationSec,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func convertResult(classname string, keep float64, r *models.ValidationResult) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      fmt.Sprintf("line-%d", r.Index),
		Classname: classname,
	}

	switch {
	case !r.SchemaOK:
		tc.Error = &JUnitError{
			Message: "assistant output failed schema validation",
			Type:    "SchemaError",
			Body:    strings.Join(r.Issues.SchemaErrors, "\n"),
		}
	case r.Score < keep:
		tc.Failure = &JUnitFailure{
			Message: fmt.Sprintf("line %d: score=%.2f below %.2f", r.Index, r.Score, keep),
			Type:    "QualityFailure",
			Body:    formatIssues(&r.Issues),
		}
	}
	return tc
}

func formatIssues(issues *models.Issues) string {
	var b strings.Builder
	for _, u := range issues.UnknownWho {
		b.WriteString(fmt.Sprintf("[%s] task %d: who=%q\n", models.GraderKindWho, u.Index, u.Who))
	}
	for _, w := range issues.WhenMissing {
		b.WriteString(fmt.Sprintf("[%s] task %d: when=%q\n", models.GraderKindWhen, w.Index, w.When))
	}
	for _, l := range issues.LowSimilarity {
		b.WriteString(fmt.Sprintf("[%s] task %d: sim=%.3f what=%q\n", models.GraderKindSemantic, l.Index, l.Similarity, l.What))
	}
	return b.String()
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(outcome *models.CorpusOutcome, path string) error {
	suites := ConvertToJUnit(outcome)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
