//go:build integration

package integration

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/quest-engine/integration/runner"
)

var caseFlag = flag.String("case", "", "Name of test case to run (from integration/cases/)")
var errFlag = flag.String("err", "continue", "Error handling mode: 'continue' (run all steps) or 'exit' (stop on first failure)")
var runsFlag = flag.Int("runs", 1, "Number of times to run each test suite")
var campaignFlag = flag.String("campaign", "", "Override campaign for all test cases")

func TestMain(m *testing.M) {
	fmt.Printf("Running Quest Engine Integration Tests\n")
	fmt.Printf("   API Base URL: %s\n", apiBaseURL())
	os.Exit(m.Run())
}

func newRunner(mode runner.ErrorHandlingMode) *runner.Runner {
	r := runner.NewRunner(apiBaseURL())
	r.Timeout = time.Duration(getIntEnv("TEST_TIMEOUT_SECONDS", 30)) * time.Second
	r.ErrorHandlingMode = mode
	r.CampaignOverride = *campaignFlag
	r.Logger = func(format string, args ...any) {
		fmt.Printf(format+"\n", args...)
	}
	return r
}

func TestIntegrationSuites(t *testing.T) {
	if *caseFlag != "" {
		t.Skip("-case given; see TestSingleSuite")
	}
	testRunner := newRunner(runner.ErrorHandlingContinue)

	testFiles, err := discoverTestFiles("cases")
	if err != nil {
		t.Fatalf("Failed to discover test files: %v", err)
	}
	if len(testFiles) == 0 {
		t.Fatal("No test files found in cases directory")
	}

	// sequences only regroup plain cases, so the bulk run skips them
	var jobs []runner.TestJob
	for _, file := range testFiles {
		suite, err := runner.LoadTestSuite(file)
		if err != nil {
			t.Errorf("Failed to load test suite %s: %v", file, err)
			continue
		}
		if suite.IsSequence() {
			continue
		}
		jobs = append(jobs, runner.TestJob{Name: suite.Name, Suite: suite, CaseFile: file})
	}
	if len(jobs) == 0 {
		t.Fatal("No valid test suites loaded")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var failed []string
	for i, job := range jobs {
		t.Logf("[%d/%d] Starting test suite: %s (%d steps)", i+1, len(jobs), job.Name, len(job.Suite.Steps))
		result, _ := testRunner.RunSuite(ctx, job.Suite)
		t.Logf("GameState ID: %s", result.GameState)
		if result.Error != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", job.Name, result.Error))
			t.Errorf("[%d/%d] FAILED: %s: %v", i+1, len(jobs), job.Name, result.Error)
			continue
		}
		t.Logf("[%d/%d] PASSED: %s in %v", i+1, len(jobs), job.Name, result.Duration)
	}

	t.Logf("Integration Test Summary: %d passed, %d failed", len(jobs)-len(failed), len(failed))
	if len(failed) > 0 {
		t.Fatalf("Integration tests failed:\n   %s", strings.Join(failed, "\n   "))
	}
}

// TestSingleSuite runs the cases named by -case, comma-separated, -runs times each.
func TestSingleSuite(t *testing.T) {
	if *caseFlag == "" {
		t.Skip("Use -case flag to run a single test suite")
	}
	mode := runner.ErrorHandlingMode(*errFlag)
	if mode != runner.ErrorHandlingExit && mode != runner.ErrorHandlingContinue {
		t.Fatalf("Invalid -err value %q: use 'continue' or 'exit'", *errFlag)
	}
	testRunner := newRunner(mode)

	var jobs []runner.TestJob
	for _, name := range strings.Split(*caseFlag, ",") {
		name = strings.TrimSpace(name)
		if !strings.HasSuffix(name, ".json") {
			name += ".json"
		}
		expanded, err := runner.LoadTestSuiteWithExpansion(filepath.Join("cases", name), "cases")
		if err != nil {
			t.Fatalf("Failed to load test suite %s: %v", name, err)
		}
		jobs = append(jobs, expanded...)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	var failures []failureDetail
	stats := make(map[string]struct{ passes, failures int })
	var names []string
	for run := 1; run <= *runsFlag; run++ {
		for _, job := range jobs {
			result, _ := testRunner.RunSuite(ctx, job.Suite)
			s, seen := stats[job.Name]
			if !seen {
				names = append(names, job.Name)
			}
			if result.Error != nil {
				s.failures++
				for _, step := range result.Results {
					if step.Error != nil {
						failures = append(failures, failureDetail{job.Name, step.StepName, step.Error.Error(), run})
					}
				}
				if len(result.Results) == 0 {
					failures = append(failures, failureDetail{job.Name, "setup", result.Error.Error(), run})
				}
			} else {
				s.passes++
			}
			stats[job.Name] = s
		}
	}

	t.Log(buildFinalReport(*runsFlag, names, stats))
	if len(failures) > 0 {
		t.Log(buildFailureReport(failures))
		t.Fatalf("Test suite(s) had errors")
	}
}

// buildFinalReport summarizes passes per suite across runs
func buildFinalReport(runs int, names []string, stats map[string]struct{ passes, failures int }) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n=== RESULTS (%d run(s)) ===\n", runs)
	for _, name := range names {
		s := stats[name]
		total := s.passes + s.failures
		fmt.Fprintf(&sb, "  %s: %d/%d passes (%.1f%%)\n", name, s.passes, total, float64(s.passes)/float64(total)*100)
		if s.passes > 0 && s.failures > 0 {
			sb.WriteString("    ⚠️  FLAKY: This test both passed and failed across runs\n")
		}
	}
	return sb.String()
}

// buildFailureReport groups step failures by case
func buildFailureReport(all []failureDetail) string {
	byCase := make(map[string][]failureDetail)
	for _, f := range all {
		byCase[f.caseName] = append(byCase[f.caseName], f)
	}
	var names []string
	for name := range byCase {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("\n========================================\nDetailed Failure Report\n========================================\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "\n%s (%d step failure(s)):\n", name, len(byCase[name]))
		for _, f := range byCase[name] {
			fmt.Fprintf(&sb, "  ✗ %s (run %d):\n      %s\n", f.stepName, f.run, f.error)
		}
	}
	return sb.String()
}

// failureDetail tracks information about a specific step failure
type failureDetail struct {
	caseName string
	stepName string
	error    string
	run      int
}

func discoverTestFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func apiBaseURL() string {
	if u := os.Getenv("API_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func getIntEnv(name string, defaultValue int) int {
	val, err := strconv.Atoi(os.Getenv(name))
	if err != nil {
		return defaultValue
	}
	return val
}
