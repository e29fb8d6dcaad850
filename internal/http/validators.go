package http

import "fmt"

// validateAggregationRequest checks the payload shape. Address syntax and
// prefix ranges are left to the domain service.
func validateAggregationRequest(r CreateAggregationRequest) error {
	if len(r.Networks) == 0 {
		return fmt.Errorf("networks is required")
	}
	for i, n := range r.Networks {
		if n.Address == "" {
			return fmt.Errorf("networks[%d].address is required", i)
		}
		if n.Prefix == nil {
			return fmt.Errorf("networks[%d].prefix is required", i)
		}
	}
	return nil
}
