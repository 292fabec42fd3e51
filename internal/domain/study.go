package domain

// QuizResult records one quiz round against a study node.
type QuizResult struct {
	Date    string `json:"date"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
}

// StudyNode is one topic in a book's curriculum tree. Done and progress of
// non-leaf nodes are derived from their children and never stored.
type StudyNode struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Done         bool         `json:"done"`
	Note         string       `json:"note,omitempty"`
	Children     []*StudyNode `json:"children,omitempty"`
	MasteryLevel int          `json:"masteryLevel,omitempty"`
	QuizHistory  []QuizResult `json:"quizHistory,omitempty"`
}

// StudyBook is one book in the library with its curriculum forest.
type StudyBook struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Author   string       `json:"author,omitempty"`
	Children []*StudyNode `json:"children,omitempty"`
}

// StudyTree is the whole library.
type StudyTree struct {
	Books []*StudyBook `json:"books"`
}

// Progress returns completion as 0-100. Leaves are 0 or 100 by their Done
// flag; parents average their children's progress.
func (n *StudyNode) Progress() float64 {
	if len(n.Children) == 0 {
		if n.Done {
			return 100
		}
		return 0
	}
	var sum float64
	for _, c := range n.Children {
		sum += c.Progress()
	}
	return sum / float64(len(n.Children))
}

// Find walks the tree in pre-order and returns the first node whose title
// matches topic by case-insensitive substring containment in either
// direction. First match wins.
func (t *StudyTree) Find(topic string) *StudyNode {
	for _, b := range t.Books {
		for _, n := range b.Children {
			if hit := findNode(n, topic); hit != nil {
				return hit
			}
		}
	}
	return nil
}

func findNode(n *StudyNode, topic string) *StudyNode {
	if TitleMatch(n.Title, topic) {
		return n
	}
	for _, c := range n.Children {
		if hit := findNode(c, topic); hit != nil {
			return hit
		}
	}
	return nil
}
