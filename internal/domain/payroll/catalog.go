package payroll

import (
	"github.com/google/uuid"
)

// DefaultConcepts returns the built-in concept catalog a new tenant
// starts from. Codes follow the house convention: P for percepciones,
// D for deducciones, O for otros pagos. Exemption limits follow LISR
// art. 93 and the employment-subsidy decrees; the calculator clamps
// each limit to the line amount, so formulas state the bare cap.
func DefaultConcepts(tenantID uuid.UUID) []Concept {
	return []Concept{
		{
			ID:            uuid.New(),
			TenantID:      tenantID,
			Code:          "P001",
			Name:          "Sueldo",
			Kind:          KindEarning,
			Category:      CategorySalary,
			FormulaSrc:    "SALARIO_DIARIO * DIAS_LABORALES",
			TaxableForISR: true,
			IntegratesSBC: true,
			LegalBasis:    "LFT art. 82",
			Active:        true,
			SortOrder:     10,
		},
		{
			ID:               uuid.New(),
			TenantID:         tenantID,
			Code:             "P002",
			Name:             "Horas extra dobles",
			Kind:             KindEarning,
			Category:         CategoryOvertime,
			FormulaSrc:       "SALARIO_HORA * 2 * HORAS_EXTRA_DOBLES",
			ExemptionFormula: "MIN(MONTO * 0.5, UMA_DIARIA * 5)",
			TaxableForISR:    true,
			LegalBasis:       "LFT art. 67, LISR art. 93 fr. I",
			Active:           true,
			SortOrder:        20,
		},
		{
			ID:            uuid.New(),
			TenantID:      tenantID,
			Code:          "P003",
			Name:          "Horas extra triples",
			Kind:          KindEarning,
			Category:      CategoryOvertime,
			FormulaSrc:    "SALARIO_HORA * 3 * HORAS_EXTRA_TRIPLES",
			TaxableForISR: true,
			LegalBasis:    "LFT art. 68",
			Active:        true,
			SortOrder:     30,
		},
		{
			ID:               uuid.New(),
			TenantID:         tenantID,
			Code:             "P004",
			Name:             "Prima dominical",
			Kind:             KindEarning,
			Category:         CategoryPremium,
			FormulaSrc:       "SALARIO_DIARIO * 0.25 * DOMINGOS_TRABAJADOS",
			ExemptionFormula: "UMA_DIARIA * DOMINGOS_TRABAJADOS",
			TaxableForISR:    true,
			LegalBasis:       "LFT art. 71, LISR art. 93 fr. XIV",
			Active:           true,
			SortOrder:        40,
		},
		{
			ID:               uuid.New(),
			TenantID:         tenantID,
			Code:             "P005",
			Name:             "Vales de despensa",
			Kind:             KindEarning,
			Category:         CategorySocialBenefit,
			FormulaSrc:       "MONTO_VALES_DESPENSA",
			ExemptionFormula: "UMA_DIARIA * 0.4 * DIAS_PERIODO",
			TaxableForISR:    true,
			LegalBasis:       "LISR art. 93 fr. VIII",
			Active:           true,
			SortOrder:        50,
		},
		{
			ID:            uuid.New(),
			TenantID:      tenantID,
			Code:          "P006",
			Name:          "Día festivo laborado",
			Kind:          KindEarning,
			Category:      CategoryPremium,
			FormulaSrc:    "SALARIO_DIARIO * 2 * DIAS_FESTIVOS_LABORADOS",
			TaxableForISR: true,
			LegalBasis:    "LFT art. 75",
			Active:        true,
			SortOrder:     60,
		},
		{
			ID:         uuid.New(),
			TenantID:   tenantID,
			Code:       "D001",
			Name:       "ISR",
			Kind:       KindDeduction,
			Category:   CategoryTax,
			FormulaSrc: "MAX(TABLA_ISR(BASE_GRAVABLE) - SUBSIDIO_EMPLEO(BASE_GRAVABLE), 0)",
			LegalBasis: "LISR art. 96",
			Active:     true,
			SortOrder:  100,
		},
		{
			ID:         uuid.New(),
			TenantID:   tenantID,
			Code:       "D002",
			Name:       "IMSS cuota obrera",
			Kind:       KindDeduction,
			Category:   CategorySocialSecurity,
			FormulaSrc: "IMSS_OBRERO(SBC_DIARIO, DIAS_PERIODO)",
			LegalBasis: "LSS arts. 106, 147, 168",
			Active:     true,
			SortOrder:  110,
		},
		{
			ID:         uuid.New(),
			TenantID:   tenantID,
			Code:       "D003",
			Name:       "Descuento por faltas",
			Kind:       KindDeduction,
			Category:   CategoryDiscount,
			FormulaSrc: "SALARIO_DIARIO * DIAS_AUSENTES",
			LegalBasis: "LFT art. 47 fr. X",
			Active:     true,
			SortOrder:  120,
		},
		{
			ID:         uuid.New(),
			TenantID:   tenantID,
			Code:       "D004",
			Name:       "Permiso sin goce de sueldo",
			Kind:       KindDeduction,
			Category:   CategoryDiscount,
			FormulaSrc: "SALARIO_DIARIO * DIAS_PERMISO_SIN_GOCE",
			Active:     true,
			SortOrder:  130,
		},
		{
			ID:         uuid.New(),
			TenantID:   tenantID,
			Code:       "O001",
			Name:       "Subsidio al empleo entregado",
			Kind:       KindOtherPayment,
			Category:   CategorySubsidy,
			FormulaSrc: "MAX(SUBSIDIO_EMPLEO(BASE_GRAVABLE) - TABLA_ISR(BASE_GRAVABLE), 0)",
			LegalBasis: "Decreto de subsidio para el empleo",
			Active:     true,
			SortOrder:  200,
		},
	}
}
