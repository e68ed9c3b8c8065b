// Package domain holds the types shared by every scholarly-infrastructure
// provider: provider names, the normalized Record, and the error taxonomy.
package domain

import (
	"fmt"
	"strings"
)

// ProviderName identifies one scholarly-infrastructure provider.
type ProviderName string

const (
	ProviderEuropePMC       ProviderName = "europepmc"
	ProviderOpenAIRE        ProviderName = "openaire"
	ProviderSemanticScholar ProviderName = "semantic"
	ProviderUnpaywall       ProviderName = "unpaywall"
	ProviderDissemin        ProviderName = "dissemin"
	ProviderDimensions      ProviderName = "dimensions"
	ProviderRePEc           ProviderName = "repec"
)

// String returns the string representation of the provider name.
func (p ProviderName) String() string {
	return string(p)
}

// AllProviders returns every known provider in registration order.
func AllProviders() []ProviderName {
	return []ProviderName{
		ProviderEuropePMC,
		ProviderOpenAIRE,
		ProviderSemanticScholar,
		ProviderUnpaywall,
		ProviderDissemin,
		ProviderDimensions,
		ProviderRePEc,
	}
}

// ParseProviderName resolves a case-insensitive provider name.
func ParseProviderName(s string) (ProviderName, error) {
	name := ProviderName(strings.ToLower(strings.TrimSpace(s)))
	for _, p := range AllProviders() {
		if p == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}
