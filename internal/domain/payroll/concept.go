package payroll

import (
	"fmt"

	"github.com/google/uuid"
)

// ConceptKind partitions catalog entries into the three sections of a
// payslip.
type ConceptKind string

const (
	KindEarning      ConceptKind = "percepcion"
	KindDeduction    ConceptKind = "deduccion"
	KindOtherPayment ConceptKind = "otro_pago"
)

// IsValid returns true for a recognized kind
func (k ConceptKind) IsValid() bool {
	switch k {
	case KindEarning, KindDeduction, KindOtherPayment:
		return true
	}
	return false
}

// ConceptCategory groups concepts for resolver ordering and reporting.
type ConceptCategory string

const (
	CategorySalary         ConceptCategory = "sueldo"
	CategoryOvertime       ConceptCategory = "horas_extra"
	CategoryPremium        ConceptCategory = "prima"
	CategorySocialBenefit  ConceptCategory = "prevision_social"
	CategoryBonus          ConceptCategory = "gratificacion"
	CategoryTax            ConceptCategory = "impuesto"
	CategorySocialSecurity ConceptCategory = "seguridad_social"
	CategoryDiscount       ConceptCategory = "descuento"
	CategorySubsidy        ConceptCategory = "subsidio"
	CategoryOther          ConceptCategory = "otro"
)

// categoriesByKind is the whitelist the resolver checks at catalog-load
// time. An unrecognized category fails fast, before any employee runs.
var categoriesByKind = map[ConceptKind]map[ConceptCategory]bool{
	KindEarning: {
		CategorySalary:        true,
		CategoryOvertime:      true,
		CategoryPremium:       true,
		CategorySocialBenefit: true,
		CategoryBonus:         true,
		CategoryOther:         true,
	},
	KindDeduction: {
		CategoryTax:            true,
		CategorySocialSecurity: true,
		CategoryDiscount:       true,
		CategoryOther:          true,
	},
	KindOtherPayment: {
		CategorySubsidy: true,
		CategoryOther:   true,
	},
}

// Concept is one tenant-scoped catalog entry. The formula fields are
// plain expression strings over the engine's variable names and table
// functions; LegalBasis is citation metadata only.
type Concept struct {
	ID               uuid.UUID       `json:"id"`
	TenantID         uuid.UUID       `json:"tenantId"`
	Code             string          `json:"codigo"`
	Name             string          `json:"nombre"`
	Kind             ConceptKind     `json:"tipo"`
	Category         ConceptCategory `json:"categoria"`
	FormulaSrc       string          `json:"formula"`
	ExemptionFormula string          `json:"formulaExencion,omitempty"`
	AnnualCapFormula string          `json:"formulaTopeAnual,omitempty"`
	TaxableForISR    bool            `json:"gravaISR"`
	IntegratesSBC    bool            `json:"integraSBC"`
	LegalBasis       string          `json:"fundamentoLegal,omitempty"`
	Active           bool            `json:"activo"`
	SortOrder        int             `json:"orden"`
}

// CompiledConcept pairs a catalog entry with its pre-parsed formulas so a
// batch parses each formula exactly once.
type CompiledConcept struct {
	Concept
	Formula   *Formula
	Exemption *Formula // nil when no exemption limit applies
	AnnualCap *Formula // validated at load, not applied per period
}

// dependsOnDerived reports whether any of the concept's formulas read a
// variable that only exists after the earnings phase, or call a table
// function that consumes the taxable base.
func (c *CompiledConcept) dependsOnDerived() bool {
	for _, f := range []*Formula{c.Formula, c.Exemption} {
		if f == nil {
			continue
		}
		if f.References(VarTaxableBase) || f.References(VarTotalEarnings) {
			return true
		}
		for name := range f.Functions() {
			if taxBaseFunctions[name] {
				return true
			}
		}
	}
	return false
}

// compileConcept parses and validates a single catalog entry. Errors are
// INVALID_CATALOG and carry the concept code.
func compileConcept(c Concept, knownFuncs map[string]bool) (*CompiledConcept, error) {
	if c.Code == "" {
		return nil, NewInvalidCatalogError("", "concept has no code")
	}
	if !c.Kind.IsValid() {
		return nil, NewInvalidCatalogError(c.Code, fmt.Sprintf("unknown concept kind %q", c.Kind))
	}
	if !categoriesByKind[c.Kind][c.Category] {
		return nil, NewInvalidCatalogError(c.Code,
			fmt.Sprintf("category %q is not recognized for kind %q", c.Category, c.Kind))
	}
	if c.FormulaSrc == "" {
		return nil, NewInvalidCatalogError(c.Code, "concept has no formula")
	}

	compiled := &CompiledConcept{Concept: c}

	var err error
	if compiled.Formula, err = CompileFormula(c.FormulaSrc); err != nil {
		return nil, NewInvalidCatalogError(c.Code, fmt.Sprintf("formula: %v", err))
	}
	if c.ExemptionFormula != "" {
		if c.Kind != KindEarning {
			return nil, NewInvalidCatalogError(c.Code, "only earnings may declare an exemption limit")
		}
		if compiled.Exemption, err = CompileFormula(c.ExemptionFormula); err != nil {
			return nil, NewInvalidCatalogError(c.Code, fmt.Sprintf("exemption formula: %v", err))
		}
	}
	if c.AnnualCapFormula != "" {
		if compiled.AnnualCap, err = CompileFormula(c.AnnualCapFormula); err != nil {
			return nil, NewInvalidCatalogError(c.Code, fmt.Sprintf("annual cap formula: %v", err))
		}
	}

	for _, f := range []*Formula{compiled.Formula, compiled.Exemption, compiled.AnnualCap} {
		if f == nil {
			continue
		}
		for name := range f.Functions() {
			if !knownFuncs[name] {
				return nil, NewInvalidCatalogError(c.Code,
					fmt.Sprintf("formula calls unknown table function %q", name))
			}
		}
	}

	// Earnings feed the taxable base; letting one read the base would
	// create a cycle the two-phase pipeline cannot satisfy.
	if c.Kind == KindEarning && compiled.Formula.References(VarTaxableBase) {
		return nil, NewInvalidCatalogError(c.Code,
			fmt.Sprintf("earning formula cannot reference %s", VarTaxableBase))
	}

	return compiled, nil
}
