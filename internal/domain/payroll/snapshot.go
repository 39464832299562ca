package payroll

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Table function names callable from catalog formulas.
const (
	FuncISRTable     = "TABLA_ISR"
	FuncSubsidy      = "SUBSIDIO_EMPLEO"
	FuncIMSSWorker   = "IMSS_OBRERO"
	FuncIMSSIllness  = "IMSS_ENFERMEDAD_MATERNIDAD"
	FuncIMSSLife     = "IMSS_INVALIDEZ_VIDA"
	FuncIMSSOldAge   = "IMSS_CESANTIA_VEJEZ"
)

// taxBaseFunctions marks the functions whose argument is the taxable
// base, which only exists after the earnings phase.
var taxBaseFunctions = map[string]bool{
	FuncISRTable: true,
	FuncSubsidy:  true,
}

// CatalogSnapshot is the immutable, pre-compiled view of a tenant's
// active concept catalog plus the fiscal-year tables, loaded once per
// batch and shared read-only by every calculation in it. Reloading a
// catalog mid-batch is not supported; all employees of one run see the
// same rules.
type CatalogSnapshot struct {
	TenantID uuid.UUID

	earnings            []*CompiledConcept
	statutoryDeductions []*CompiledConcept
	otherDeductions     []*CompiledConcept
	otherPayments       []*CompiledConcept

	fiscalYears map[int]*FiscalYear
}

// NewCatalogSnapshot compiles and validates the active concepts of one
// tenant against the given fiscal-year data. Any structural problem is
// reported here, before any employee is processed, because a broken
// catalog would fail identically for every employee.
func NewCatalogSnapshot(tenantID uuid.UUID, concepts []Concept, years map[int]*FiscalYear) (*CatalogSnapshot, error) {
	if len(years) == 0 {
		return nil, NewInvalidCatalogError("", "no fiscal-year data supplied")
	}

	knownFuncs := knownFunctionNames(years)
	snapshot := &CatalogSnapshot{TenantID: tenantID, fiscalYears: years}

	seen := map[string]bool{}
	for _, c := range concepts {
		if !c.Active {
			continue
		}
		if seen[c.Code] {
			return nil, NewInvalidCatalogError(c.Code, "duplicate concept code in active catalog")
		}
		seen[c.Code] = true

		compiled, err := compileConcept(c, knownFuncs)
		if err != nil {
			return nil, err
		}

		switch {
		case compiled.Kind == KindEarning:
			snapshot.earnings = append(snapshot.earnings, compiled)
		case compiled.Kind == KindOtherPayment:
			snapshot.otherPayments = append(snapshot.otherPayments, compiled)
		case compiled.statutory():
			snapshot.statutoryDeductions = append(snapshot.statutoryDeductions, compiled)
		default:
			snapshot.otherDeductions = append(snapshot.otherDeductions, compiled)
		}
	}

	if err := snapshot.validateOrdering(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// statutory reports whether a deduction belongs to the tax/social-security
// phase, which must run after the taxable base is known.
func (c *CompiledConcept) statutory() bool {
	if c.Category == CategoryTax || c.Category == CategorySocialSecurity {
		return true
	}
	return c.dependsOnDerived()
}

// validateOrdering enforces the two-phase pipeline: only statutory
// deductions and other payments may read derived variables.
func (s *CatalogSnapshot) validateOrdering() error {
	for _, c := range s.otherDeductions {
		if c.dependsOnDerived() {
			return NewInvalidCatalogError(c.Code,
				"non-statutory deduction cannot depend on the taxable base")
		}
	}
	return nil
}

// Earnings returns the earning concepts in catalog order
func (s *CatalogSnapshot) Earnings() []*CompiledConcept {
	return s.earnings
}

// StatutoryDeductions returns the tax/social-security deductions, which
// the calculator evaluates only after the taxable base is folded in
func (s *CatalogSnapshot) StatutoryDeductions() []*CompiledConcept {
	return s.statutoryDeductions
}

// OtherDeductions returns the remaining deductions in catalog order
func (s *CatalogSnapshot) OtherDeductions() []*CompiledConcept {
	return s.otherDeductions
}

// OtherPayments returns the supplementary-payment concepts
func (s *CatalogSnapshot) OtherPayments() []*CompiledConcept {
	return s.otherPayments
}

// ConceptCount returns the number of active concepts in the snapshot
func (s *CatalogSnapshot) ConceptCount() int {
	return len(s.earnings) + len(s.statutoryDeductions) + len(s.otherDeductions) + len(s.otherPayments)
}

// FiscalYear returns the fiscal-year data for the given year
func (s *CatalogSnapshot) FiscalYear(year int) (*FiscalYear, error) {
	fy, ok := s.fiscalYears[year]
	if !ok {
		return nil, NewMissingInputError(fmt.Sprintf("fiscal year %d", year))
	}
	return fy, nil
}

// Functions builds the table-function registry for one calculation,
// binding each name to the period's fiscal year and pay frequency.
// Year-suffixed aliases (e.g. TABLA_ISR_2025) are registered for every
// year the snapshot carries, so catalogs may pin a table explicitly.
func (s *CatalogSnapshot) Functions(fy *FiscalYear, freq PayFrequency) FuncRegistry {
	reg := FuncRegistry{}
	bind := func(suffix string, year *FiscalYear) {
		reg[FuncISRTable+suffix] = func(args []decimal.Decimal) (decimal.Decimal, error) {
			if len(args) != 1 {
				return decimal.Zero, NewInvalidFormulaError(FuncISRTable + " takes exactly one argument")
			}
			return year.ISRTax(args[0], freq)
		}
		reg[FuncSubsidy+suffix] = func(args []decimal.Decimal) (decimal.Decimal, error) {
			if len(args) != 1 {
				return decimal.Zero, NewInvalidFormulaError(FuncSubsidy + " takes exactly one argument")
			}
			return year.EmploymentSubsidy(args[0], freq)
		}
		reg[FuncIMSSWorker+suffix] = func(args []decimal.Decimal) (decimal.Decimal, error) {
			if len(args) != 2 {
				return decimal.Zero, NewInvalidFormulaError(FuncIMSSWorker + " takes (sbcDiario, dias)")
			}
			return year.IMSSWorkerTotal(args[0], args[1])
		}
		ramoFunc := func(name string, ramo IMSSRamo) {
			reg[name+suffix] = func(args []decimal.Decimal) (decimal.Decimal, error) {
				if len(args) != 2 {
					return decimal.Zero, NewInvalidFormulaError(name + " takes (sbcDiario, dias)")
				}
				return year.IMSSWorkerQuota(args[0], args[1], ramo)
			}
		}
		ramoFunc(FuncIMSSIllness, RamoEnfermedadMaternidad)
		ramoFunc(FuncIMSSLife, RamoInvalidezVida)
		ramoFunc(FuncIMSSOldAge, RamoCesantiaVejez)
	}

	bind("", fy)
	for year, data := range s.fiscalYears {
		bind(fmt.Sprintf("_%d", year), data)
	}
	return reg
}

// knownFunctionNames lists every function name catalogs may call given
// the loaded fiscal years; used for fail-fast validation at load time.
func knownFunctionNames(years map[int]*FiscalYear) map[string]bool {
	base := []string{FuncISRTable, FuncSubsidy, FuncIMSSWorker, FuncIMSSIllness, FuncIMSSLife, FuncIMSSOldAge}
	// MIN and MAX are evaluator built-ins, not table lookups, but
	// Formula.Functions reports every call site.
	known := map[string]bool{"MIN": true, "MAX": true}
	for _, name := range base {
		known[name] = true
		for year := range years {
			known[fmt.Sprintf("%s_%d", name, year)] = true
		}
	}
	return known
}
