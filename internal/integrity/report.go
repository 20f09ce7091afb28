package integrity

import (
	"sort"
	"sync"
	"time"

	"github.com/quizhive/quizhive-backend/internal/model"
)

// BuildBatchReport analyzes every submission in the collection against the
// full collection and ranks the results by suspicion score, descending
// (stable for ties). Each analysis is independent, so the fan-out runs one
// goroutine per submission; results land in their own slice slot so no lock
// is needed.
func BuildBatchReport(allSubmissions []*model.Submission, questions []model.Question) (*model.BatchReport, error) {
	if allSubmissions == nil || questions == nil {
		return nil, ErrMissingInput
	}

	results := make([]*model.AnalysisResult, len(allSubmissions))

	var wg sync.WaitGroup
	for i, sub := range allSubmissions {
		if sub == nil {
			continue
		}
		wg.Add(1)
		go func(i int, sub *model.Submission) {
			defer wg.Done()
			// Inputs are validated above; per-submission analysis cannot fail.
			res, err := AnalyzeSubmission(sub, allSubmissions, questions)
			if err == nil {
				results[i] = res
			}
		}(i, sub)
	}
	wg.Wait()

	reports := make([]*model.AnalysisResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			reports = append(reports, r)
		}
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].SuspicionScore > reports[j].SuspicionScore
	})

	flagged := 0
	for _, r := range reports {
		if r.IsSuspicious {
			flagged++
		}
	}

	return &model.BatchReport{
		TotalSubmissions:   len(reports),
		FlaggedSubmissions: flagged,
		Reports:            reports,
		GeneratedAt:        time.Now().UTC(),
	}, nil
}
