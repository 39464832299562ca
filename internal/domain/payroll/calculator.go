package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// runState tracks the calculator's strictly linear state machine. There
// are no back-edges and no automatic retries: every transition either
// succeeds into the next state or lands in StateFailed.
type runState string

const (
	StateContextBuilt       runState = "ContextBuilt"
	StateIncidentsApplied   runState = "IncidentsApplied"
	StateEarningsEvaluated  runState = "EarningsEvaluated"
	StateBaseComputed       runState = "BaseGravableComputed"
	StateStatutoryEvaluated runState = "StatutoryDeductionsEvaluated"
	StateOtherEvaluated     runState = "OtherDeductionsEvaluated"
	StateTotaled            runState = "Totaled"
	StateDone               runState = "Done"
	StateFailed             runState = "Failed"
)

// Calculator runs the full payroll computation for one employee and one
// period against an immutable catalog snapshot. A Calculator holds no
// mutable shared state; one instance may serve any number of concurrent
// calculations.
type Calculator struct {
	snapshot *CatalogSnapshot
}

// NewCalculator creates a calculator bound to a catalog snapshot
func NewCalculator(snapshot *CatalogSnapshot) *Calculator {
	return &Calculator{snapshot: snapshot}
}

// Calculate produces the payroll result for one (employee, period) pair.
// Fatal errors abort only this employee: the returned *CalculationError
// carries the partial audit trail so callers can see how far the run got.
// The same inputs and snapshot always yield the same line amounts.
func (c *Calculator) Calculate(employee Employee, period Period, incidents []Incident) (*Result, error) {
	run := &calculation{
		snapshot:  c.snapshot,
		employee:  employee,
		period:    period,
		incidents: incidents,
		trail:     NewTrailRecorder(),
	}

	steps := []func() error{
		run.buildContext,
		run.applyIncidents,
		run.evaluateEarnings,
		run.computeTaxableBase,
		run.evaluateStatutory,
		run.evaluateOtherDeductions,
		run.total,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, run.fail(err)
		}
	}

	run.state = StateDone
	run.result.Trail = run.trail.Entries()
	return run.result, nil
}

// calculation carries the evolving state of a single run. The variable
// context is only ever replaced with extended copies; earlier contexts
// stay valid for anyone still holding them.
type calculation struct {
	snapshot  *CatalogSnapshot
	employee  Employee
	period    Period
	incidents []Incident

	state runState
	trail *TrailRecorder
	fy    *FiscalYear
	funcs FuncRegistry
	ctx   *Context

	result          *Result
	totalEarnings   decimal.Decimal
	totalDeductions decimal.Decimal
	totalOther      decimal.Decimal
	taxableBase     decimal.Decimal
}

// fail moves the run to its terminal Failed state and attaches the
// partial audit trail to the error.
func (r *calculation) fail(err error) error {
	r.state = StateFailed
	if calcErr, ok := err.(*CalculationError); ok {
		clone := *calcErr
		clone.Trail = r.trail.Entries()
		return &clone
	}
	return &CalculationError{
		Kind:    ErrKindInvalidFormula,
		Message: err.Error(),
		Trail:   r.trail.Entries(),
	}
}

func (r *calculation) buildContext() error {
	fy, err := r.snapshot.FiscalYear(r.period.Year)
	if err != nil {
		return err
	}
	r.fy = fy
	r.funcs = r.snapshot.Functions(fy, r.period.Frequency)

	r.trail.BeginPhase()
	ctx, err := BuildContext(r.employee, r.period, fy)
	if err != nil {
		return err
	}
	r.ctx = ctx
	r.state = StateContextBuilt
	r.trail.EndPhase(PhaseContextBuild, fmt.Sprintf("contexto inicial con %d variables", ctx.Len()))
	return nil
}

func (r *calculation) applyIncidents() error {
	r.trail.BeginPhase()
	r.ctx = ApplyIncidents(r.ctx, r.incidents, r.trail)
	r.state = StateIncidentsApplied
	r.trail.EndPhase(PhaseIncidents, fmt.Sprintf("%d incidencias aplicadas", len(r.incidents)))
	return nil
}

func (r *calculation) evaluateEarnings() error {
	r.trail.BeginPhase()
	r.result = &Result{
		EmployeeID:    r.employee.ID,
		PeriodID:      r.period.ID,
		Earnings:      make([]EarningLine, 0, len(r.snapshot.Earnings())),
		Deductions:    make([]DeductionLine, 0, 4),
		OtherPayments: make([]OtherPaymentLine, 0, 1),
	}

	for _, concept := range r.snapshot.Earnings() {
		amount, err := concept.Formula.EvalMoney(r.ctx, r.funcs)
		if err != nil {
			return conceptError(err, concept.Code)
		}
		if amount.IsZero() {
			continue
		}

		exempt := decimal.Zero
		switch {
		case !concept.TaxableForISR:
			// Fully exempt concepts contribute nothing to the base even
			// without an explicit exemption formula.
			exempt = amount
		case concept.Exemption != nil:
			limit, err := concept.Exemption.EvalMoney(r.ctx.With(VarLineAmount, amount), r.funcs)
			if err != nil {
				return conceptError(err, concept.Code)
			}
			exempt = decimal.Min(limit, amount)
			if exempt.IsNegative() {
				exempt = decimal.Zero
			}
		}

		r.result.Earnings = append(r.result.Earnings, EarningLine{
			Code:    concept.Code,
			Name:    concept.Name,
			Amount:  amount,
			Taxable: amount.Sub(exempt),
			Exempt:  exempt,
		})
		r.totalEarnings = r.totalEarnings.Add(amount)
		r.taxableBase = r.taxableBase.Add(amount.Sub(exempt))
	}

	r.state = StateEarningsEvaluated
	r.trail.EndPhase(PhaseEarnings, fmt.Sprintf("%d percepciones evaluadas", len(r.result.Earnings)))
	return nil
}

func (r *calculation) computeTaxableBase() error {
	r.trail.BeginPhase()
	r.ctx = r.ctx.WithAll(map[string]decimal.Decimal{
		VarTaxableBase:   r.taxableBase,
		VarTotalEarnings: r.totalEarnings,
	})
	r.state = StateBaseComputed
	r.trail.EndPhase(PhaseTaxableBase, fmt.Sprintf("base gravable %s", r.taxableBase.StringFixed(2)))
	return nil
}

// evaluateStatutory evaluates ISR/IMSS deductions and the supplementary
// payments that hang off the same taxable base (subsidio entregado).
func (r *calculation) evaluateStatutory() error {
	r.trail.BeginPhase()
	for _, concept := range r.snapshot.StatutoryDeductions() {
		if err := r.addDeduction(concept); err != nil {
			return err
		}
	}
	for _, concept := range r.snapshot.OtherPayments() {
		amount, err := concept.Formula.EvalMoney(r.ctx, r.funcs)
		if err != nil {
			return conceptError(err, concept.Code)
		}
		if amount.IsZero() {
			continue
		}
		r.result.OtherPayments = append(r.result.OtherPayments, OtherPaymentLine{
			Code:   concept.Code,
			Name:   concept.Name,
			Amount: amount,
		})
		r.totalOther = r.totalOther.Add(amount)
	}
	r.state = StateStatutoryEvaluated
	r.trail.EndPhase(PhaseStatutory, fmt.Sprintf("%d deducciones legales, %d otros pagos",
		len(r.result.Deductions), len(r.result.OtherPayments)))
	return nil
}

func (r *calculation) evaluateOtherDeductions() error {
	r.trail.BeginPhase()
	for _, concept := range r.snapshot.OtherDeductions() {
		if err := r.addDeduction(concept); err != nil {
			return err
		}
	}
	r.state = StateOtherEvaluated
	r.trail.EndPhase(PhaseOtherDeduction, "otras deducciones evaluadas")
	return nil
}

func (r *calculation) addDeduction(concept *CompiledConcept) error {
	amount, err := concept.Formula.EvalMoney(r.ctx, r.funcs)
	if err != nil {
		return conceptError(err, concept.Code)
	}
	if amount.IsZero() {
		return nil
	}
	r.result.Deductions = append(r.result.Deductions, DeductionLine{
		Code:   concept.Code,
		Name:   concept.Name,
		Amount: amount,
	})
	r.totalDeductions = r.totalDeductions.Add(amount)
	return nil
}

func (r *calculation) total() error {
	r.trail.BeginPhase()
	r.result.TotalEarnings = r.totalEarnings
	r.result.TotalDeductions = r.totalDeductions
	r.result.TotalOtherPayments = r.totalOther
	r.result.TaxableBase = r.taxableBase
	r.result.NetPay = r.totalEarnings.Sub(r.totalDeductions)
	if r.result.NetPay.IsNegative() {
		r.trail.Warn(PhaseTotals, fmt.Sprintf(
			"deducciones %s exceden percepciones %s; neto ajustado a cero",
			r.totalDeductions.StringFixed(2), r.totalEarnings.StringFixed(2)))
		r.result.NetPay = decimal.Zero
	}
	r.state = StateTotaled
	r.trail.EndPhase(PhaseTotals, fmt.Sprintf("neto a pagar %s", r.result.NetPay.StringFixed(2)))
	return nil
}

// conceptError annotates a calculation error with the catalog concept
// that produced it, so administrators can locate the misconfigured entry.
func conceptError(err error, code string) error {
	if calcErr, ok := err.(*CalculationError); ok && calcErr.Concept == "" {
		return calcErr.WithConcept(code)
	}
	return err
}
