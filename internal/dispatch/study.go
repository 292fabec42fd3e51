package dispatch

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jaeyunk/partner/internal/command"
	"github.com/jaeyunk/partner/internal/domain"
	"github.com/jaeyunk/partner/internal/state"
	"github.com/jaeyunk/partner/internal/store"
)

func (d *Dispatcher) recordStudy(c command.Command) string {
	if c.Topic == "" {
		return "기록할 주제가 없어요."
	}
	var matched string
	err := d.st.Mutate(store.DomainDevelopment, func(data *state.Data) error {
		node := data.Study.Find(c.Topic)
		if node == nil {
			return state.ErrNoChange
		}
		matched = node.Title
		if c.Note != "" {
			// Append, never overwrite: earlier notes stay.
			if node.Note != "" {
				node.Note += "\n\n" + c.Note
			} else {
				node.Note = c.Note
			}
		}
		if c.MarkDone {
			node.Done = true
		}
		return nil
	})
	if err != nil {
		slog.Error("record study failed", "error", err)
		return "학습 기록에 실패했어요."
	}
	if matched == "" {
		return fmt.Sprintf("%q 주제를 서재에서 찾지 못했어요.", c.Topic)
	}
	if c.MarkDone {
		return fmt.Sprintf("%q 학습 완료로 기록했습니다. 📚", matched)
	}
	return fmt.Sprintf("%q 노트를 남겼습니다. 📝", matched)
}

func (d *Dispatcher) deleteBook(c command.Command) string {
	if c.ID == "" {
		return "삭제할 책의 ID가 없어요."
	}
	removed := ""
	err := d.st.Mutate(store.DomainDevelopment, func(data *state.Data) error {
		for i, b := range data.Study.Books {
			if b.ID == string(c.ID) {
				removed = b.Title
				data.Study.Books = append(data.Study.Books[:i], data.Study.Books[i+1:]...)
				return nil
			}
		}
		return state.ErrNoChange
	})
	if err != nil {
		slog.Error("delete book failed", "error", err)
		return "책을 삭제하지 못했어요."
	}
	if removed == "" {
		return "해당 책을 찾지 못했어요."
	}
	return fmt.Sprintf("%q 책을 서재에서 삭제했습니다.", removed)
}

// curriculumNode mirrors the nested {title, children} shape the model emits
// for generate_curriculum.
type curriculumNode struct {
	Title    string           `json:"title"`
	Children []curriculumNode `json:"children,omitempty"`
}

func (d *Dispatcher) generateCurriculum(c command.Command) string {
	if c.Title == "" {
		return "커리큘럼을 만들 책 제목이 없어요."
	}
	var kids []curriculumNode
	if len(c.Children) > 0 {
		if err := json.Unmarshal(c.Children, &kids); err != nil {
			slog.Warn("curriculum children decode failed", "error", err)
			return "커리큘럼 구조를 이해하지 못했어요."
		}
	}

	book := &domain.StudyBook{
		ID:       domain.NewID(d.now()),
		Title:    c.Title,
		Children: d.buildNodes(kids),
	}
	err := d.st.Mutate(store.DomainDevelopment, func(data *state.Data) error {
		data.Study.Books = append(data.Study.Books, book)
		return nil
	})
	if err != nil {
		slog.Error("generate curriculum failed", "error", err)
		return "커리큘럼 생성에 실패했어요."
	}
	return fmt.Sprintf("%q 커리큘럼을 만들었습니다. 📖", c.Title)
}

func (d *Dispatcher) buildNodes(items []curriculumNode) []*domain.StudyNode {
	if len(items) == 0 {
		return nil
	}
	nodes := make([]*domain.StudyNode, 0, len(items))
	for _, s := range items {
		nodes = append(nodes, &domain.StudyNode{
			ID:       domain.NewID(d.now()),
			Title:    s.Title,
			Children: d.buildNodes(s.Children),
		})
	}
	return nodes
}

func (d *Dispatcher) startQuiz(c command.Command) (string, *Payload) {
	if c.Topic == "" {
		return "퀴즈를 낼 주제가 없어요.", nil
	}
	// Read-only lookup for the quiz payload; quiz answers arrive later as
	// their own commands.
	var topic string
	_ = d.st.Mutate(store.DomainDevelopment, func(data *state.Data) error {
		if node := data.Study.Find(c.Topic); node != nil {
			topic = node.Title
		}
		return state.ErrNoChange
	})
	if topic == "" {
		return fmt.Sprintf("%q 주제를 서재에서 찾지 못했어요.", c.Topic), nil
	}
	return "", &Payload{Kind: "quiz", Topic: topic}
}

func (d *Dispatcher) searchBooks(c command.Command) (string, *Payload) {
	if len(c.Results) == 0 {
		return "검색 결과가 없어요.", nil
	}
	return "", &Payload{Kind: "books", Data: c.Results}
}
