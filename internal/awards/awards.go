// Package awards derives medals and star rankings from the evaluation
// history. Nothing here is persisted; every read recomputes from storage,
// so rankings tolerate concurrent submissions.
package awards

import (
	"context"
	"sort"

	"github.com/brightboard/brightboard-lms/internal/quiz"
)

// Tier is a per-material medal.
type Tier string

const (
	TierGold   Tier = "gold"
	TierSilver Tier = "silver"
	TierBronze Tier = "bronze"
)

// StarValues weights medals for the star total.
var StarValues = map[Tier]int{
	TierGold:   3,
	TierSilver: 2,
	TierBronze: 1,
}

// passingBar is the score that earns a medal. Fixed threshold, not
// configurable per classroom.
const passingBar = 80.0

// Award is the derived medal for one (student, material) pair. MaterialID ""
// groups the quizzes generated across all classroom materials.
type Award struct {
	MaterialID    string  `json:"material_id"`
	MaterialTitle string  `json:"material_title"`
	Tier          Tier    `json:"award"`
	Score         float64 `json:"score"`
	Attempt       int     `json:"attempts"`
}

// allMaterialsTitle labels the MaterialID=="" group and any material whose
// record has since been deleted.
const allMaterialsTitle = "All Materials"

// EvaluationSource reads the evaluation history. Satisfied by quiz.Store.
type EvaluationSource interface {
	ListEvaluations(ctx context.Context, opts quiz.EvaluationListOpts) ([]quiz.Evaluation, error)
}

// RosterSource lists a classroom's students. Satisfied by classroom.Store.
type RosterSource interface {
	EnrolledStudentIDs(ctx context.Context, classroomID string) ([]string, error)
}

// TitleSource resolves material titles. Satisfied by classroom.Store.
type TitleSource interface {
	MaterialTitle(ctx context.Context, id string) (string, error)
}

type Engine struct {
	evals  EvaluationSource
	roster RosterSource
	titles TitleSource
}

func NewEngine(evals EvaluationSource, roster RosterSource, titles TitleSource) *Engine {
	return &Engine{evals: evals, roster: roster, titles: titles}
}

// ForStudent computes the student's awards per material group. Only
// completed AI-generated evaluations count, scanned in creation order; the
// first attempt scoring at or above the bar fixes the medal: attempt 1 is
// gold, attempts 2-3 silver, later attempts bronze. Groups with no passing
// attempt earn nothing.
func (e *Engine) ForStudent(ctx context.Context, classroomID, studentID string) (map[string]Award, error) {
	evals, err := e.evals.ListEvaluations(ctx, quiz.EvaluationListOpts{
		ClassroomID: classroomID,
		StudentID:   studentID,
		Status:      "completed",
		AIOnly:      true,
		Sort:        "created_at",
	})
	if err != nil {
		return nil, err
	}

	byMaterial := map[string][]quiz.Evaluation{}
	for _, ev := range evals {
		byMaterial[ev.MaterialID] = append(byMaterial[ev.MaterialID], ev)
	}

	awards := map[string]Award{}
	for materialID, group := range byMaterial {
		for idx, ev := range group {
			if ev.Score == nil || *ev.Score < passingBar {
				continue
			}
			attempt := idx + 1
			tier := TierBronze
			switch {
			case attempt == 1:
				tier = TierGold
			case attempt <= 3:
				tier = TierSilver
			}
			awards[materialID] = Award{
				MaterialID:    materialID,
				MaterialTitle: e.materialTitle(ctx, materialID),
				Tier:          tier,
				Score:         *ev.Score,
				Attempt:       attempt,
			}
			break
		}
	}
	return awards, nil
}

func (e *Engine) materialTitle(ctx context.Context, materialID string) string {
	if materialID == "" {
		return allMaterialsTitle
	}
	title, err := e.titles.MaterialTitle(ctx, materialID)
	if err != nil {
		return allMaterialsTitle
	}
	return title
}

// StarTotal sums the star weights of a student's awards.
func StarTotal(awards map[string]Award) int {
	total := 0
	for _, a := range awards {
		total += StarValues[a.Tier]
	}
	return total
}

// Ranking is one student's position in a classroom leaderboard.
type Ranking struct {
	Total int `json:"star_total"`
	Rank  int `json:"rank"`
}

// StarRankings ranks all enrolled students by star total, descending, with
// competition ranking: equal totals share a rank, and the next distinct
// total takes its 1-based position in the sorted order. Totals [9,9,6,3]
// rank [1,1,3,4]. Returns the rankings and the student count.
func (e *Engine) StarRankings(ctx context.Context, classroomID string) (map[string]Ranking, int, error) {
	return e.rankings(ctx, classroomID, StarTotal)
}

// GoldRankings ranks by raw gold-medal count with the same scheme.
func (e *Engine) GoldRankings(ctx context.Context, classroomID string) (map[string]Ranking, int, error) {
	return e.rankings(ctx, classroomID, func(awards map[string]Award) int {
		n := 0
		for _, a := range awards {
			if a.Tier == TierGold {
				n++
			}
		}
		return n
	})
}

func (e *Engine) rankings(ctx context.Context, classroomID string, total func(map[string]Award) int) (map[string]Ranking, int, error) {
	studentIDs, err := e.roster.EnrolledStudentIDs(ctx, classroomID)
	if err != nil {
		return nil, 0, err
	}

	type entry struct {
		studentID string
		total     int
	}
	entries := make([]entry, 0, len(studentIDs))
	for _, id := range studentIDs {
		awards, err := e.ForStudent(ctx, classroomID, id)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry{studentID: id, total: total(awards)})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].total > entries[j].total })

	rankings := make(map[string]Ranking, len(entries))
	rank := 0
	lastTotal := -1
	for i, en := range entries {
		if en.total != lastTotal {
			rank = i + 1
			lastTotal = en.total
		}
		rankings[en.studentID] = Ranking{Total: en.total, Rank: rank}
	}
	return rankings, len(entries), nil
}
