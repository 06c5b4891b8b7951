package closing

import (
	"fmt"
	"sort"
	"strings"

	"cierrecaja/backend/internal/domain"
	"cierrecaja/backend/internal/money"
)

// validateChannels compares the cashier-registered per-channel totals
// against the externally reported ones for the same period. Channels form
// an open string-keyed set; a channel present on only one side counts as
// zero on the other. A difference is material when it exceeds the
// threshold. The overall verdict is Ok only when no channel is material
// and the base came out exact.
func validateChannels(registered map[string]int64, reported map[string]int64, threshold int64, base domain.BaseStatus) domain.ValidationVerdict {
	channels := make(map[string]struct{}, len(registered)+len(reported))
	for channel := range registered {
		channels[channel] = struct{}{}
	}
	for channel := range reported {
		channels[channel] = struct{}{}
	}

	perChannel := make(map[string]domain.ChannelDifference, len(channels))
	material := make([]string, 0, len(channels))
	var largest int64
	for channel := range channels {
		diff := reported[channel] - registered[channel]
		isMaterial := abs(diff) > threshold
		perChannel[channel] = domain.ChannelDifference{
			Reported:   reported[channel],
			Registered: registered[channel],
			Difference: diff,
			IsMaterial: isMaterial,
		}
		if isMaterial {
			material = append(material, channel)
			if abs(diff) > largest {
				largest = abs(diff)
			}
		}
	}
	sort.Strings(material)

	if len(material) == 0 && base.Kind == domain.BaseExact {
		return domain.ValidationVerdict{
			Status:     domain.VerdictOk,
			PerChannel: perChannel,
			Message:    "Cierre validado correctamente",
		}
	}

	parts := make([]string, 0, len(material)+1)
	for _, channel := range material {
		parts = append(parts, fmt.Sprintf("Diferencia en %s: %s", channel, money.FormatCOP(abs(perChannel[channel].Difference))))
	}
	if len(material) > 0 {
		parts = append(parts, fmt.Sprintf("Mayor diferencia: %s", money.FormatCOP(largest)))
	} else {
		parts = append(parts, base.Message)
	}

	return domain.ValidationVerdict{
		Status:     domain.VerdictWarning,
		PerChannel: perChannel,
		Message:    strings.Join(parts, " | "),
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
