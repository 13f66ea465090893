package triage

import "strings"

// Issue is a known failure category with a canned remediation. The set of
// issues is fixed at startup and never mutated; Classify only ever hands out
// copies of these values.
type Issue struct {
	Type        string
	Description string
	Solution    string
}

var (
	issueNodeSetup = Issue{
		Type:        "node-setup-failure",
		Description: "Node.js environment setup failed",
		Solution:    "Check that the requested Node.js version exists and that setup-node's node-version input matches an available release.",
	}
	issueCheckout = Issue{
		Type:        "checkout-failure",
		Description: "Repository checkout failed",
		Solution:    "Verify the workflow token has access to the repository and that the ref being checked out exists.",
	}
	issueDependencyInstall = Issue{
		Type:        "dependency-installation-failure",
		Description: "Dependency installation failed",
		Solution:    "Ensure the lockfile is committed and in sync with package.json, and that the package registry is reachable from the runner.",
	}
	issueBuild = Issue{
		Type:        "build-failure",
		Description: "Project build failed",
		Solution:    "Reproduce the build locally with the same command and Node.js version, then fix the compile or bundling errors it reports.",
	}
	issueTest = Issue{
		Type:        "test-failure",
		Description: "Test suite failed",
		Solution:    "Run the failing tests locally and check for environment-dependent assumptions or flaky tests.",
	}
	issueWorkflowSyntax = Issue{
		Type:        "invalid-workflow-syntax",
		Description: "The workflow file may contain invalid syntax",
		Solution:    "Validate the workflow YAML against the GitHub Actions workflow schema and check for indentation mistakes.",
	}
	issuePermissions = Issue{
		Type:        "permission-denied",
		Description: "The job may lack required permissions",
		Solution:    "Review the permissions block of the workflow and the repository's Actions settings for restricted scopes.",
	}
)

// Classify maps a failed step name to one or more known issues. Matching is
// case-insensitive substring containment, evaluated in a fixed priority
// order; the first branch that matches wins. A step name that matches none of
// the specific patterns returns the two generic fallback issues, syntax
// before permissions.
func Classify(stepName string) []Issue {
	name := strings.ToLower(stepName)

	switch {
	case strings.Contains(name, "node") || strings.Contains(name, "setup-node"):
		return []Issue{issueNodeSetup}
	case strings.Contains(name, "checkout"):
		return []Issue{issueCheckout}
	case strings.Contains(name, "install") || strings.Contains(name, "npm") || strings.Contains(name, "yarn"):
		return []Issue{issueDependencyInstall}
	case strings.Contains(name, "build"):
		return []Issue{issueBuild}
	case strings.Contains(name, "test"):
		return []Issue{issueTest}
	default:
		return []Issue{issueWorkflowSyntax, issuePermissions}
	}
}
