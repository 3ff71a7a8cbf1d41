package transform

import (
	"fmt"

	"github.com/greenstack-labs/ghgmart/internal/staging"
)

// MissingBaselineError reports a (country, gas) group with no observation at
// or after the baseline year. Index and percent change are undefined for
// such a group, so it is skipped entirely.
type MissingBaselineError struct {
	Country string
	Gas     staging.Gas
}

func (e *MissingBaselineError) Error() string {
	return fmt.Sprintf("no baseline value at or after %d for %s/%s", BaselineYear, e.Country, e.Gas)
}

// ZeroBaselineError reports a group whose baseline value is zero. Dividing
// by it would produce Inf/NaN index values, so the group fails instead.
type ZeroBaselineError struct {
	Country string
	Gas     staging.Gas
	Year    int
}

func (e *ZeroBaselineError) Error() string {
	return fmt.Sprintf("zero baseline value for %s/%s at year %d", e.Country, e.Gas, e.Year)
}

// ZeroSectorTotalError reports a country whose sector values sum to zero.
// Shares would divide by that total and come out NaN, so the country fails
// instead.
type ZeroSectorTotalError struct {
	Country string
}

func (e *ZeroSectorTotalError) Error() string {
	return fmt.Sprintf("sector values for %s sum to zero, shares are undefined", e.Country)
}

// UnmappedSectorError reports a raw sector name with no canonical mapping
// entry that is not marked excludable. The affected country is skipped.
type UnmappedSectorError struct {
	Country string
	Sector  string
}

func (e *UnmappedSectorError) Error() string {
	return fmt.Sprintf("sector %q for %s has no canonical mapping and is not excludable", e.Sector, e.Country)
}
