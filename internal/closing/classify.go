package closing

import (
	"fmt"

	"cierrecaja/backend/internal/domain"
	"cierrecaja/backend/internal/money"
)

// classifyBase interprets the achieved base sum against the target. The
// messages are the user-facing Spanish strings the closing report shows.
func classifyBase(achievedSum int64, target int64) domain.BaseStatus {
	switch {
	case achievedSum == target:
		return domain.BaseStatus{
			Kind:    domain.BaseExact,
			Message: "Base completa",
		}
	case achievedSum < target:
		missing := target - achievedSum
		return domain.BaseStatus{
			Kind:   domain.BaseShortage,
			Amount: missing,
			Message: fmt.Sprintf("Falta %s para completar la base de %s",
				money.FormatCOP(missing), money.FormatCOP(target)),
		}
	default:
		extra := achievedSum - target
		return domain.BaseStatus{
			Kind:   domain.BaseSurplus,
			Amount: extra,
			Message: fmt.Sprintf("Sobra %s por encima de la base de %s",
				money.FormatCOP(extra), money.FormatCOP(target)),
		}
	}
}
