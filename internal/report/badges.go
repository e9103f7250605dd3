package report

import (
	"sort"
	"sync"

	"github.com/mind-engage/growthreport/internal/rewards"
)

// PlaceholderBadgeImage is used when the source gives no image for a badge.
const PlaceholderBadgeImage = "placeholder_badge.png"

type Badge struct {
	Title    string `json:"title"`
	ImageRef string `json:"imgUrl"`
}

// BadgeArchive is the cumulative, per-student union of every badge ever seen
// as acquired. Entries are never removed. The zero value is not usable; use
// NewBadgeArchive.
type BadgeArchive struct {
	mu       sync.RWMutex
	students map[string]*badgeSet
}

type badgeSet struct {
	order  []string
	badges map[string]Badge
}

func NewBadgeArchive() *BadgeArchive {
	return &BadgeArchive{students: map[string]*badgeSet{}}
}

// ArchiveAndRetrieve merges the acquired entries of current into the
// student's set (keyed by title, last image wins) and returns the whole set
// in first-seen order.
func (a *BadgeArchive) ArchiveAndRetrieve(studentID string, current map[string]rewards.Badge) []Badge {
	a.mu.Lock()
	defer a.mu.Unlock()

	set, ok := a.students[studentID]
	if !ok {
		set = &badgeSet{badges: map[string]Badge{}}
		a.students[studentID] = set
	}

	ids := make([]string, 0, len(current))
	for id := range current {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		b := current[id]
		if !b.HasBadge {
			continue
		}
		img := b.ImgURL
		if img == "" {
			img = PlaceholderBadgeImage
		}
		if _, seen := set.badges[b.Title]; !seen {
			set.order = append(set.order, b.Title)
		}
		set.badges[b.Title] = Badge{Title: b.Title, ImageRef: img}
	}
	return set.list()
}

// Retrieve returns the student's set without merging anything.
func (a *BadgeArchive) Retrieve(studentID string) []Badge {
	a.mu.RLock()
	defer a.mu.RUnlock()
	set, ok := a.students[studentID]
	if !ok {
		return []Badge{}
	}
	return set.list()
}

// Len is the number of students with archived state.
func (a *BadgeArchive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.students)
}

func (s *badgeSet) list() []Badge {
	out := make([]Badge, 0, len(s.order))
	for _, t := range s.order {
		out = append(out, s.badges[t])
	}
	return out
}
