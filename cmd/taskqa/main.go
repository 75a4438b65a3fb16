package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // Corpus validated and the quality gate passed
	ExitQualityGate = 1 // Mean score below --fail-under
	ExitError       = 2 // Configuration or runtime error
)

// QualityGateError indicates that the corpus was validated successfully but
// its mean score is below the requested minimum.
type QualityGateError struct {
	MeanScore float64
	Minimum   float64
}

func (e *QualityGateError) Error() string {
	return fmt.Sprintf("quality gate failed: mean score %.4f is below %.4f", e.MeanScore, e.Minimum)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var gateErr *QualityGateError
		if errors.As(err, &gateErr) {
			os.Exit(ExitQualityGate)
		}

		os.Exit(ExitError)
	}
}
