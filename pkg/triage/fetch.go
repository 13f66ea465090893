package triage

import (
	"context"
	"errors"

	"github.com/google/go-github/v79/github"
	"github.com/sirupsen/logrus"
)

var errNotAFile = errors.New("path is a directory, not a file")

// failedRunsPageSize bounds the failed-runs listing to the most recent runs;
// the API already returns them newest first.
const failedRunsPageSize = 5

// Fetcher issues single-attempt reads against the GitHub API. Every method
// returns the zero value together with the underlying error on any failure
// (transport, auth, non-2xx, decode); nothing is retried and nothing is
// cached. Callers are expected to treat an error as "no data" and degrade,
// the error value is only kept so tests and logs can tell a failed fetch
// apart from a legitimately empty result.
type Fetcher struct {
	client *github.Client
	log    *logrus.Logger
}

// NewFetcher creates a Fetcher backed by the given client. A nil logger
// falls back to the logrus standard logger.
func NewFetcher(client *github.Client, log *logrus.Logger) *Fetcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Fetcher{client: client, log: log}
}

// FailedRuns lists the most recent workflow runs that concluded in failure.
func (f *Fetcher) FailedRuns(ctx context.Context, owner, repo string) ([]*github.WorkflowRun, error) {
	opts := &github.ListWorkflowRunsOptions{
		Status:      "failure",
		ListOptions: github.ListOptions{PerPage: failedRunsPageSize},
	}
	runs, resp, err := f.client.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, opts)
	if err != nil {
		f.logAbsence("list failed workflow runs", owner, repo, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	return runs.WorkflowRuns, nil
}

// Run fetches a single workflow run by id.
func (f *Fetcher) Run(ctx context.Context, owner, repo string, runID int64) (*github.WorkflowRun, error) {
	run, resp, err := f.client.Actions.GetWorkflowRunByID(ctx, owner, repo, runID)
	if err != nil {
		f.logAbsence("get workflow run", owner, repo, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	return run, nil
}

// Jobs lists the jobs of a workflow run, in API order.
func (f *Fetcher) Jobs(ctx context.Context, owner, repo string, runID int64) ([]*github.WorkflowJob, error) {
	jobs, resp, err := f.client.Actions.ListWorkflowJobs(ctx, owner, repo, runID, &github.ListWorkflowJobsOptions{})
	if err != nil {
		f.logAbsence("list workflow jobs", owner, repo, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	return jobs.Jobs, nil
}

// CheckRuns lists the check runs attached to a commit.
func (f *Fetcher) CheckRuns(ctx context.Context, owner, repo, sha string) ([]*github.CheckRun, error) {
	results, resp, err := f.client.Checks.ListCheckRunsForRef(ctx, owner, repo, sha, &github.ListCheckRunsOptions{})
	if err != nil {
		f.logAbsence("list check runs", owner, repo, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	return results.CheckRuns, nil
}

// Annotations lists the annotations of a check run, in API order.
func (f *Fetcher) Annotations(ctx context.Context, owner, repo string, checkRunID int64) ([]*github.CheckRunAnnotation, error) {
	annotations, resp, err := f.client.Checks.ListCheckRunAnnotations(ctx, owner, repo, checkRunID, &github.ListOptions{})
	if err != nil {
		f.logAbsence("list check run annotations", owner, repo, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	return annotations, nil
}

// WorkflowFile fetches a repository file and returns its decoded text. The
// contents API delivers the payload base64-encoded; GetContent performs the
// decode.
func (f *Fetcher) WorkflowFile(ctx context.Context, owner, repo, path string) (string, error) {
	fileContent, _, resp, err := f.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		f.logAbsence("get file contents", owner, repo, err)
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if fileContent == nil {
		f.log.WithFields(logrus.Fields{"owner": owner, "repo": repo, "path": path}).
			Warn("contents endpoint returned a directory, not a file")
		return "", errNotAFile
	}

	content, err := fileContent.GetContent()
	if err != nil {
		f.logAbsence("decode file contents", owner, repo, err)
		return "", err
	}
	return content, nil
}

// LogsURL resolves the location of a run's log archive. The redirect target
// is returned as a reference only; the archive body is never downloaded.
func (f *Fetcher) LogsURL(ctx context.Context, owner, repo string, runID int64) (string, error) {
	u, resp, err := f.client.Actions.GetWorkflowRunLogs(ctx, owner, repo, runID, 1)
	if err != nil {
		f.logAbsence("resolve workflow run logs", owner, repo, err)
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	return u.String(), nil
}

func (f *Fetcher) logAbsence(op, owner, repo string, err error) {
	f.log.WithFields(logrus.Fields{
		"owner": owner,
		"repo":  repo,
		"op":    op,
	}).WithError(err).Warn("github fetch failed, treating as absent")
}
