package triage

import (
	"context"

	"github.com/google/go-github/v79/github"
	"golang.org/x/sync/errgroup"
)

// annotationFetchLimit bounds concurrent annotation fetches across the jobs
// of one run.
const annotationFetchLimit = 4

// JobDiagnostics pairs a job with the check-run data correlated to it. Both
// CheckRun and Annotations may be empty when no check run shares the job's
// name or the fetch failed; that is not an error condition.
type JobDiagnostics struct {
	Job         *github.WorkflowJob
	CheckRun    *github.CheckRun
	Annotations []*github.CheckRunAnnotation
}

// RunDiagnostics is the correlated view of one workflow run: its jobs
// enriched with check-run annotations, plus the shared logs reference.
type RunDiagnostics struct {
	Jobs    []JobDiagnostics
	LogsURL string
}

// Correlate joins the jobs of a run to their check runs and annotations.
//
// headSHA may be empty; it is then taken from the first job. Check runs are
// fetched once for the whole run, never per job. A job is matched to the
// first check run with an identical name, and annotations are fetched only
// when the matched check run reports a positive annotation count. The logs
// location is resolved once and shared by all jobs.
//
// Fetch failures along the way degrade to missing enrichment; the returned
// diagnostics always cover every job in input order.
func (f *Fetcher) Correlate(ctx context.Context, owner, repo string, runID int64, headSHA string, jobs []*github.WorkflowJob) RunDiagnostics {
	diags := RunDiagnostics{Jobs: make([]JobDiagnostics, len(jobs))}
	for i, job := range jobs {
		diags.Jobs[i] = JobDiagnostics{Job: job}
	}
	if len(jobs) == 0 {
		return diags
	}

	if headSHA == "" {
		headSHA = jobs[0].GetHeadSHA()
	}

	var checkRuns []*github.CheckRun
	if headSHA != "" {
		checkRuns, _ = f.CheckRuns(ctx, owner, repo, headSHA)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(annotationFetchLimit)
	for i := range diags.Jobs {
		cr := matchCheckRun(checkRuns, diags.Jobs[i].Job.GetName())
		if cr == nil {
			continue
		}
		diags.Jobs[i].CheckRun = cr
		if cr.GetOutput().GetAnnotationsCount() <= 0 {
			continue
		}
		i := i
		g.Go(func() error {
			// A failed fetch leaves the job without annotations.
			annotations, err := f.Annotations(gctx, owner, repo, cr.GetID())
			if err == nil {
				diags.Jobs[i].Annotations = annotations
			}
			return nil
		})
	}
	_ = g.Wait()

	diags.LogsURL, _ = f.LogsURL(ctx, owner, repo, runID)

	return diags
}

// matchCheckRun returns the first check run whose name equals the job name
// exactly, or nil. Two jobs with the same name resolve to the same check run.
func matchCheckRun(checkRuns []*github.CheckRun, jobName string) *github.CheckRun {
	for _, cr := range checkRuns {
		if cr.GetName() == jobName {
			return cr
		}
	}
	return nil
}
