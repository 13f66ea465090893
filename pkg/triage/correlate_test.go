package triage

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/google/go-github/v79/github"
	"github.com/migueleliasweb/go-github-mock/src/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Correlate(t *testing.T) {
	var checkRunCalls, annotationCalls atomic.Int64

	mockedClient := mock.NewMockedHTTPClient(
		mock.WithRequestMatchHandler(
			mock.GetReposCommitsCheckRunsByOwnerByRepoByRef,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				checkRunCalls.Add(1)
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(mock.MustMarshal(&github.ListCheckRunsResults{
					Total: github.Ptr(2),
					CheckRuns: []*github.CheckRun{
						{
							ID:     github.Ptr(int64(101)),
							Name:   github.Ptr("build"),
							Output: &github.CheckRunOutput{AnnotationsCount: github.Ptr(2)},
						},
						{
							ID:     github.Ptr(int64(102)),
							Name:   github.Ptr("lint"),
							Output: &github.CheckRunOutput{AnnotationsCount: github.Ptr(0)},
						},
					},
				}))
			}),
		),
		mock.WithRequestMatchHandler(
			mock.GetReposCheckRunsAnnotationsByOwnerByRepoByCheckRunId,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				annotationCalls.Add(1)
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(mock.MustMarshal([]*github.CheckRunAnnotation{
					{
						Path:            github.Ptr("src/a.js"),
						AnnotationLevel: github.Ptr("failure"),
						Message:         github.Ptr("Cannot find module"),
					},
					{
						Path:            github.Ptr("src/b.js"),
						AnnotationLevel: github.Ptr("warning"),
						Message:         github.Ptr("deprecated API"),
					},
				}))
			}),
		),
		mock.WithRequestMatchHandler(
			mock.GetReposActionsRunsLogsByOwnerByRepoByRunId,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Location", "https://example.com/logs/42.zip")
				w.WriteHeader(http.StatusFound)
			}),
		),
	)

	jobs := []*github.WorkflowJob{
		{ID: github.Ptr(int64(1)), Name: github.Ptr("build")},
		{ID: github.Ptr(int64(2)), Name: github.Ptr("lint")},
		{ID: github.Ptr(int64(3)), Name: github.Ptr("docs")},
	}

	fetcher := NewFetcher(github.NewClient(mockedClient), quietLogger())
	diags := fetcher.Correlate(context.Background(), "owner", "repo", 42, "abc123", jobs)

	// Check runs are listed once for the whole run, annotations only for the
	// check run that reports a positive count.
	assert.Equal(t, int64(1), checkRunCalls.Load())
	assert.Equal(t, int64(1), annotationCalls.Load())

	require.Len(t, diags.Jobs, 3)
	assert.Equal(t, "build", diags.Jobs[0].Job.GetName())
	require.NotNil(t, diags.Jobs[0].CheckRun)
	assert.Equal(t, int64(101), diags.Jobs[0].CheckRun.GetID())
	require.Len(t, diags.Jobs[0].Annotations, 2)
	assert.Equal(t, "src/a.js", diags.Jobs[0].Annotations[0].GetPath())

	require.NotNil(t, diags.Jobs[1].CheckRun)
	assert.Empty(t, diags.Jobs[1].Annotations)

	// No check run shares the third job's name.
	assert.Nil(t, diags.Jobs[2].CheckRun)
	assert.Empty(t, diags.Jobs[2].Annotations)

	assert.Equal(t, "https://example.com/logs/42.zip", diags.LogsURL)
}

func Test_Correlate_NoJobs(t *testing.T) {
	var calls atomic.Int64

	mockedClient := mock.NewMockedHTTPClient(
		mock.WithRequestMatchHandler(
			mock.GetReposCommitsCheckRunsByOwnerByRepoByRef,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusOK)
			}),
		),
		mock.WithRequestMatchHandler(
			mock.GetReposActionsRunsLogsByOwnerByRepoByRunId,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusFound)
			}),
		),
	)

	fetcher := NewFetcher(github.NewClient(mockedClient), quietLogger())
	diags := fetcher.Correlate(context.Background(), "owner", "repo", 42, "abc123", nil)

	assert.Empty(t, diags.Jobs)
	assert.Empty(t, diags.LogsURL)
	// A run without jobs triggers no enrichment fetches at all.
	assert.Equal(t, int64(0), calls.Load())
}

func Test_Correlate_HeadSHAFromFirstJob(t *testing.T) {
	var requestedRef string

	mockedClient := mock.NewMockedHTTPClient(
		mock.WithRequestMatchHandler(
			mock.GetReposCommitsCheckRunsByOwnerByRepoByRef,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requestedRef = r.URL.Path
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(mock.MustMarshal(&github.ListCheckRunsResults{Total: github.Ptr(0)}))
			}),
		),
		mock.WithRequestMatchHandler(
			mock.GetReposActionsRunsLogsByOwnerByRepoByRunId,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Location", "https://example.com/logs/42.zip")
				w.WriteHeader(http.StatusFound)
			}),
		),
	)

	jobs := []*github.WorkflowJob{
		{ID: github.Ptr(int64(1)), Name: github.Ptr("build"), HeadSHA: github.Ptr("def456")},
	}

	fetcher := NewFetcher(github.NewClient(mockedClient), quietLogger())
	fetcher.Correlate(context.Background(), "owner", "repo", 42, "", jobs)

	assert.Equal(t, "/repos/owner/repo/commits/def456/check-runs", requestedRef)
}

func Test_Correlate_DuplicateJobNames(t *testing.T) {
	mockedClient := mock.NewMockedHTTPClient(
		mock.WithRequestMatchHandler(
			mock.GetReposCommitsCheckRunsByOwnerByRepoByRef,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(mock.MustMarshal(&github.ListCheckRunsResults{
					Total: github.Ptr(2),
					CheckRuns: []*github.CheckRun{
						{ID: github.Ptr(int64(201)), Name: github.Ptr("test")},
						{ID: github.Ptr(int64(202)), Name: github.Ptr("test")},
					},
				}))
			}),
		),
		mock.WithRequestMatchHandler(
			mock.GetReposActionsRunsLogsByOwnerByRepoByRunId,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Location", "https://example.com/logs/42.zip")
				w.WriteHeader(http.StatusFound)
			}),
		),
	)

	jobs := []*github.WorkflowJob{
		{ID: github.Ptr(int64(1)), Name: github.Ptr("test"), HeadSHA: github.Ptr("abc123")},
		{ID: github.Ptr(int64(2)), Name: github.Ptr("test"), HeadSHA: github.Ptr("abc123")},
	}

	fetcher := NewFetcher(github.NewClient(mockedClient), quietLogger())
	diags := fetcher.Correlate(context.Background(), "owner", "repo", 42, "abc123", jobs)

	// Both jobs resolve to the first check run with a matching name.
	require.NotNil(t, diags.Jobs[0].CheckRun)
	require.NotNil(t, diags.Jobs[1].CheckRun)
	assert.Equal(t, int64(201), diags.Jobs[0].CheckRun.GetID())
	assert.Equal(t, int64(201), diags.Jobs[1].CheckRun.GetID())
}

func Test_Correlate_CheckRunFetchFailure(t *testing.T) {
	mockedClient := mock.NewMockedHTTPClient(
		mock.WithRequestMatchHandler(
			mock.GetReposCommitsCheckRunsByOwnerByRepoByRef,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				mock.WriteError(w, http.StatusForbidden, "Resource not accessible")
			}),
		),
		mock.WithRequestMatchHandler(
			mock.GetReposActionsRunsLogsByOwnerByRepoByRunId,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Location", "https://example.com/logs/42.zip")
				w.WriteHeader(http.StatusFound)
			}),
		),
	)

	jobs := []*github.WorkflowJob{
		{ID: github.Ptr(int64(1)), Name: github.Ptr("build"), HeadSHA: github.Ptr("abc123")},
	}

	fetcher := NewFetcher(github.NewClient(mockedClient), quietLogger())
	diags := fetcher.Correlate(context.Background(), "owner", "repo", 42, "abc123", jobs)

	// The job survives without enrichment and the logs are still resolved.
	require.Len(t, diags.Jobs, 1)
	assert.Nil(t, diags.Jobs[0].CheckRun)
	assert.Equal(t, "https://example.com/logs/42.zip", diags.LogsURL)
}
