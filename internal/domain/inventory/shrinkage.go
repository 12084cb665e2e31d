package inventory

// ShrinkageReason motivo tipificado de una merma.
type ShrinkageReason string

const (
	ShrinkageExpired            ShrinkageReason = "EXPIRED"
	ShrinkageDamaged            ShrinkageReason = "DAMAGED"
	ShrinkageTheft              ShrinkageReason = "THEFT"
	ShrinkageSpoilage           ShrinkageReason = "SPOILAGE"
	ShrinkageWeighingDifference ShrinkageReason = "WEIGHING_DIFFERENCE"
	ShrinkageOther              ShrinkageReason = "OTHER"
)

// ParseShrinkageReason valida el motivo recibido.
func ParseShrinkageReason(s string) (ShrinkageReason, bool) {
	switch r := ShrinkageReason(s); r {
	case ShrinkageExpired, ShrinkageDamaged, ShrinkageTheft, ShrinkageSpoilage,
		ShrinkageWeighingDifference, ShrinkageOther:
		return r, true
	}
	return "", false
}
