package entity

// AdjustmentReason razón de un ajuste manual de stock (conjunto cerrado).
type AdjustmentReason string

const (
	ReasonDamaged          AdjustmentReason = "DAMAGED"
	ReasonExpired          AdjustmentReason = "EXPIRED"
	ReasonTheft            AdjustmentReason = "THEFT"
	ReasonCountCorrection  AdjustmentReason = "COUNT_CORRECTION"
	ReasonQualityIssue     AdjustmentReason = "QUALITY_ISSUE"
	ReasonReturnToSupplier AdjustmentReason = "RETURN_TO_SUPPLIER"
	ReasonOther            AdjustmentReason = "OTHER"

	// Razones internas: no se aceptan en peticiones externas; las genera el propio núcleo.
	ReasonManualOverride AdjustmentReason = "MANUAL_OVERRIDE" // fijación absoluta de stock
	ReasonReversal       AdjustmentReason = "REVERSAL"        // compensación de una transacción
)

// Valid indica si la razón pertenece al conjunto cerrado (incluye razones internas).
func (r AdjustmentReason) Valid() bool {
	switch r {
	case ReasonDamaged, ReasonExpired, ReasonTheft, ReasonCountCorrection,
		ReasonQualityIssue, ReasonReturnToSupplier, ReasonOther,
		ReasonManualOverride, ReasonReversal:
		return true
	}
	return false
}

// Requestable indica si la razón puede venir en una petición externa de ajuste.
func (r AdjustmentReason) Requestable() bool {
	switch r {
	case ReasonDamaged, ReasonExpired, ReasonTheft, ReasonCountCorrection,
		ReasonQualityIssue, ReasonReturnToSupplier, ReasonOther:
		return true
	}
	return false
}
