package dispatch

import (
	"fmt"
	"log/slog"

	"github.com/jaeyunk/partner/internal/command"
	"github.com/jaeyunk/partner/internal/domain"
	"github.com/jaeyunk/partner/internal/state"
	"github.com/jaeyunk/partner/internal/store"
)

func (d *Dispatcher) addEquipmentLog(c command.Command) string {
	if c.Content == "" {
		return "기록할 내용이 없어요."
	}
	date := c.Date
	if date == "" {
		date = d.now().Format("2006-01-02")
	}

	var target string
	unknownID := false
	err := d.st.Mutate(store.DomainEquipment, func(data *state.Data) error {
		if len(data.Equipment) == 0 {
			return state.ErrNoChange
		}
		// No equipId from the model means the first asset; a documented
		// heuristic. A provided equipId that matches nothing is a lookup
		// failure, never a silent fallback.
		idx := -1
		if c.EquipID == "" {
			idx = 0
		} else {
			for i := range data.Equipment {
				if data.Equipment[i].ID == string(c.EquipID) {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			unknownID = true
			return state.ErrNoChange
		}
		target = data.Equipment[idx].Name
		data.Equipment[idx].Logs = append(data.Equipment[idx].Logs, domain.EquipmentLog{
			ID:      domain.NewID(d.now()),
			Date:    date,
			Content: c.Content,
			Type:    "maintenance",
		})
		return nil
	})
	if err != nil {
		slog.Error("add equipment log failed", "error", err)
		return "설비 기록에 실패했어요."
	}
	if unknownID {
		return "해당 설비를 찾지 못했어요."
	}
	if target == "" {
		return "등록된 설비가 없어 기록하지 못했어요."
	}
	return fmt.Sprintf("%s 설비 일지에 기록했습니다. 🔧", target)
}
