package triage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v79/github"
	"github.com/triageops/actions-triage-mcp-server/pkg/sanitize"
)

// Reports are assembled purely from fetched data so that identical inputs
// always render byte-identical text.

const reportSeparator = "------------------------------------------------------------"

// RunReportEntry is one failed run together with its resolved logs
// reference, which may be empty.
type RunReportEntry struct {
	Run     *github.WorkflowRun
	LogsURL string
}

// RenderFailedRuns renders the failed-runs report. Entries are rendered in
// the order given, which is the API's most-recent-first order.
func RenderFailedRuns(owner, repo string, entries []RunReportEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No failed workflow runs found for %s/%s.", owner, repo)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Failed workflow runs for %s/%s:\n", owner, repo)
	for _, e := range entries {
		b.WriteString("\n")
		b.WriteString(reportSeparator)
		b.WriteString("\n")
		writeRunBlock(&b, e.Run, e.LogsURL)
	}
	return b.String()
}

func writeRunBlock(b *strings.Builder, run *github.WorkflowRun, logsURL string) {
	fmt.Fprintf(b, "Run ID: %d\n", run.GetID())
	fmt.Fprintf(b, "Workflow: %s\n", run.GetName())
	fmt.Fprintf(b, "Branch: %s\n", run.GetHeadBranch())
	fmt.Fprintf(b, "Status: %s\n", run.GetStatus())
	fmt.Fprintf(b, "Conclusion: %s\n", run.GetConclusion())
	fmt.Fprintf(b, "Created: %s\n", run.GetCreatedAt().UTC().Format(time.RFC3339))
	fmt.Fprintf(b, "URL: %s\n", run.GetHTMLURL())
	if logsURL != "" {
		fmt.Fprintf(b, "Logs: %s\n", logsURL)
	}
}

// RenderJobs renders the jobs report for one run. Job order is preserved
// from the fetch; the logs reference is shared across all jobs.
func RenderJobs(runID int64, diags RunDiagnostics) string {
	if len(diags.Jobs) == 0 {
		return fmt.Sprintf("No jobs found for workflow run %d.", runID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Jobs for workflow run %d:\n", runID)
	for _, jd := range diags.Jobs {
		b.WriteString("\n")
		b.WriteString(reportSeparator)
		b.WriteString("\n")
		writeJobHeader(&b, jd.Job, diags.LogsURL)
		writeSteps(&b, jd.Job.Steps)
		writeAnnotations(&b, jd.Annotations)
	}
	return b.String()
}

func writeJobHeader(b *strings.Builder, job *github.WorkflowJob, logsURL string) {
	fmt.Fprintf(b, "Job: %s\n", job.GetName())
	fmt.Fprintf(b, "Status: %s\n", job.GetStatus())
	fmt.Fprintf(b, "Conclusion: %s\n", job.GetConclusion())
	fmt.Fprintf(b, "URL: %s\n", job.GetHTMLURL())
	if logsURL != "" {
		fmt.Fprintf(b, "Logs: %s\n", logsURL)
	}
}

func writeSteps(b *strings.Builder, steps []*github.TaskStep) {
	if len(steps) == 0 {
		return
	}
	b.WriteString("Steps:\n")
	for _, step := range steps {
		fmt.Fprintf(b, "  Step %d: %s (%s)\n", step.GetNumber(), step.GetName(), stepOutcome(step))
	}
}

// stepOutcome prefers the conclusion, falling back to the live status for
// steps that never completed.
func stepOutcome(step *github.TaskStep) string {
	if c := step.GetConclusion(); c != "" {
		return c
	}
	return step.GetStatus()
}

func writeAnnotations(b *strings.Builder, annotations []*github.CheckRunAnnotation) {
	if len(annotations) == 0 {
		return
	}
	b.WriteString("Annotations:\n")
	for _, a := range annotations {
		fmt.Fprintf(b, "  [%s] %s:%d-%d: %s\n",
			strings.ToUpper(a.GetAnnotationLevel()),
			a.GetPath(),
			a.GetStartLine(),
			a.GetEndLine(),
			sanitize.Sanitize(a.GetMessage()),
		)
	}
}

// RenderWorkflowFile renders decoded workflow file text inside a YAML fence.
func RenderWorkflowFile(path, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Workflow file: %s\n\n", path)
	b.WriteString("```yaml\n")
	b.WriteString(sanitize.FilterInvisibleCharacters(content))
	if !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```")
	return b.String()
}

// RenderWorkflowFileAbsent is the fixed sentence for a file that could not
// be retrieved or decoded.
func RenderWorkflowFileAbsent(path string) string {
	return fmt.Sprintf("Failed to retrieve workflow file '%s'.", path)
}

// RenderAnalysis renders the failure analysis for one run. Only failed jobs
// are analyzed; each of their failed steps gets a classification block. The
// report closes with fixed general recommendations and one corrective
// example.
func RenderAnalysis(runID int64, diags RunDiagnostics) string {
	if len(diags.Jobs) == 0 {
		return fmt.Sprintf("No jobs found for workflow run %d.", runID)
	}

	var failed []JobDiagnostics
	for _, jd := range diags.Jobs {
		if jd.Job.GetConclusion() == "failure" {
			failed = append(failed, jd)
		}
	}
	if len(failed) == 0 {
		return fmt.Sprintf("No failed jobs found in workflow run %d.", runID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Failure analysis for workflow run %d:\n", runID)
	for _, jd := range failed {
		b.WriteString("\n")
		b.WriteString(reportSeparator)
		b.WriteString("\n")
		writeJobHeader(&b, jd.Job, diags.LogsURL)
		writeAnnotations(&b, jd.Annotations)
		writeFailedSteps(&b, jd.Job.Steps)
	}

	b.WriteString("\n")
	b.WriteString(reportSeparator)
	b.WriteString("\n")
	b.WriteString(analysisFooter)
	return b.String()
}

func writeFailedSteps(b *strings.Builder, steps []*github.TaskStep) {
	for _, step := range steps {
		if step.GetConclusion() != "failure" {
			continue
		}
		fmt.Fprintf(b, "Failed step %d: %s\n", step.GetNumber(), step.GetName())
		for _, issue := range Classify(step.GetName()) {
			fmt.Fprintf(b, "  - %s: %s\n", issue.Type, issue.Description)
			fmt.Fprintf(b, "    Solution: %s\n", issue.Solution)
		}
	}
}

const analysisFooter = `General recommendations:
1. Open the failed step's log in the run page and read the first error; later failures usually cascade from it.
2. Reproduce the failing command locally with the same tool versions the runner uses.
3. Pin action and tool versions instead of floating tags so runs stay reproducible.
4. Re-run the workflow with debug logging enabled (ACTIONS_STEP_DEBUG=true) for more detail.

Example fix for a pinned Node.js version:
` + "```yaml" + `
- uses: actions/setup-node@v4
  with:
    node-version: 20
` + "```"
