package bundle

import (
	"github.com/jgoulah/gridsizer/pkg/models"
	"github.com/jgoulah/gridsizer/pkg/sizing"
)

const (
	// MaxMatches bounds the catalog suggestions returned for one sizing
	MaxMatches = 3
	// matchToleranceKVA lets slightly smaller SKUs through, since catalog
	// ratings are discrete and recommendations are not.
	matchToleranceKVA = 2
)

// MatchCatalog returns up to MaxMatches products, in catalog order, whose
// inverter rating is within tolerance of the recommendation or above it.
// Products that declare no inverter rating never match.
func MatchCatalog(s sizing.Result, catalog []models.Product) []models.Product {
	floor := s.InverterKVA() - matchToleranceKVA

	matches := []models.Product{}
	for _, p := range catalog {
		if p.InverterKVA <= 0 || p.InverterKVA < floor {
			continue
		}
		matches = append(matches, p)
		if len(matches) == MaxMatches {
			break
		}
	}
	return matches
}
