package analyzer

import "fmt"

// NewDetector creates a detector based on the specified variant
func NewDetector(variant string, prominence float64) (Detector, error) {
	switch variant {
	case "extrema", "":
		return NewExtremaDetector(prominence), nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
