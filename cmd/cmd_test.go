package cmd

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/etnz/etfwatch"
	"github.com/etnz/etfwatch/ark"
	"github.com/etnz/etfwatch/date"
	"github.com/google/go-cmp/cmp"
	"github.com/google/subcommands"
)

const header = "date,fund,company,ticker,cusip,shares,market value($),weight(%)\n"

// holdings serves a holdings file per fund and per day: ARKK grows its
// TSLA position, ARKQ cannot be downloaded.
func holdings(t *testing.T, day string) *httptest.Server {
	t.Helper()
	files := map[string]string{
		"2021-03-01": header + "03/01/2021,ARKK,TESLA INC,TSLA,88160R101,100,100000,60\n03/01/2021,ARKK,ROKU INC,ROKU,77543R102,100,50000,40\n",
		"2021-03-02": header + "03/02/2021,ARKK,TESLA INC,TSLA,88160R101,150,165000,70\n03/02/2021,ARKK,ROKU INC,ROKU,77543R102,100,50000,30\n",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ARKK.csv" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, files[day])
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setup writes a configuration with the given funds and points the global
// flags at it.
func setup(t *testing.T, funds string) (root string) {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "etfw.yaml")
	content := "root: data\ninterval: 1ms\ncache_dir: ''\n" + funds
	if err := os.WriteFile(cfg, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	old, oldRoot := *configFile, *rootDir
	*configFile, *rootDir = cfg, ""
	t.Cleanup(func() { *configFile, *rootDir = old, oldRoot })
	return filepath.Join(dir, "data")
}

func execute(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("invalid arguments %q: %v", args, err)
	}
	return c.Execute(context.Background(), f)
}

func TestRunCmd(t *testing.T) {
	t.Setenv("ETFW_ROOT", "")
	day1, day2 := holdings(t, "2021-03-01"), holdings(t, "2021-03-02")

	root := setup(t, "funds:\n  - {ticker: ARKK, url: "+day1.URL+"/ARKK.csv}\n")
	if status := execute(t, &fetchCmd{}); status != subcommands.ExitSuccess {
		t.Fatalf("fetch status = %v", status)
	}

	// Same archive, next day.
	cfg := *configFile
	content := "root: data\ninterval: 1ms\ncache_dir: ''\nmetrics_file: node/etfw.prom\nfunds:\n  - {ticker: ARKK, url: " + day2.URL + "/ARKK.csv}\n  - {ticker: ARKQ, url: " + day2.URL + "/ARKQ.csv}\n"
	if err := os.WriteFile(cfg, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if status := execute(t, &runCmd{}, "-q", "-html", "-j", "2"); status != subcommands.ExitSuccess {
		t.Fatalf("run status = %v", status)
	}

	archive := etfwatch.Archive{Root: root}
	on := date.New(2021, 3, 2)
	for _, path := range []string{
		archive.SnapshotPath("ARKK", date.New(2021, 3, 1)),
		archive.SnapshotPath("ARKK", on),
		archive.DeltaPath("ARKK", on),
		archive.SummaryPath(on),
		strings.TrimSuffix(archive.SummaryPath(on), ".md") + ".html",
		filepath.Join(filepath.Dir(cfg), "node", "etfw.prom"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing file: %v", err)
		}
	}

	summary, err := os.ReadFile(archive.SummaryPath(on))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"# Holdings summary, 2021-03-02",
		"$150,000 --> $215,000",
		"- **TSLA**: TESLA INC: 1 of 2 (0): $1,000.00 --> $1,100.00 (+10.00%): +50 shares (+50.00%)",
		"### ARKQ\n\nNot processed.",
	} {
		if !strings.Contains(string(summary), want) {
			t.Errorf("summary does not contain %q:\n%s", want, summary)
		}
	}

	latest, err := latestSummary(archive)
	if err != nil || latest != archive.SummaryPath(on) {
		t.Errorf("latestSummary() = %q, %v", latest, err)
	}
}

func TestRunCmd_Offline(t *testing.T) {
	t.Setenv("ETFW_ROOT", "")
	root := setup(t, "funds:\n  - {ticker: ARKK, url: http://127.0.0.1:1/ARKK.csv}\n")

	// Nothing archived: the fund fails but the summary is written.
	if status := execute(t, &runCmd{}, "-offline", "-q"); status != subcommands.ExitFailure {
		t.Errorf("run status = %v, want failure", status)
	}
	if _, err := latestSummary(etfwatch.Archive{Root: root}); err != nil {
		t.Errorf("latestSummary() error = %v", err)
	}
}

func TestDiff(t *testing.T) {
	dir := t.TempDir()
	yesterday := filepath.Join(dir, "ARKK_2021_03_01.csv")
	today := filepath.Join(dir, "ARKK_2021_03_02.csv")
	other := filepath.Join(dir, "ARKQ_2021_03_02.csv")
	for path, content := range map[string]string{
		yesterday: header + "03/01/2021,ARKK,TESLA INC,TSLA,88160R101,100,100000,60\n",
		today:     header + "03/02/2021,ARKK,TESLA INC,TSLA,88160R101,100,80000,50\n",
		other:     header + "03/02/2021,ARKQ,TESLA INC,TSLA,88160R101,100,80000,50\n",
	} {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	md, err := diff(yesterday, today, etfwatch.DefaultThresholds)
	if err != nil {
		t.Fatalf("diff() error = %v", err)
	}
	for _, want := range []string{"$100,000 --> $80,000", "Change: -$20,000 (-20.00%)", "  - (-) share price %: -20.00%"} {
		if !strings.Contains(md, want) {
			t.Errorf("diff() does not contain %q:\n%s", want, md)
		}
	}

	if _, err := diff(yesterday, other, etfwatch.DefaultThresholds); err == nil {
		t.Errorf("diff() of two funds should fail")
	}
	if _, err := diff(filepath.Join(dir, "missing.csv"), today, etfwatch.DefaultThresholds); err == nil {
		t.Errorf("diff() of a missing file should fail")
	}
}

func TestSelectFunds(t *testing.T) {
	funds := []ark.Fund{{Ticker: "ARKK", URL: "k"}, {Ticker: "ARKQ", URL: "q"}}
	got, err := selectFunds(funds, []string{"ARKQ"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]ark.Fund{{Ticker: "ARKQ", URL: "q"}}, got); diff != "" {
		t.Errorf("selectFunds() mismatch (-want +got):\n%s", diff)
	}
	if _, err := selectFunds(funds, []string{"ARKX"}); err == nil {
		t.Errorf("selectFunds() of an unknown fund should fail")
	}
}

func TestRunExtension(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extension script is a shell script")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	script := "#!/bin/sh\necho \"$ETFW_ROOT $ETFW_VERBOSE $1\" > " + out + "\nexit 3\n"
	if err := os.WriteFile(filepath.Join(dir, "etfw-hello"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	old := *rootDir
	*rootDir = "/srv/etfw"
	t.Cleanup(func() { *rootDir = old })

	found, code := RunExtension("hello", []string{"world"})
	if !found || code != 3 {
		t.Errorf("RunExtension() = %v, %d, want true, 3", found, code)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if want := "/srv/etfw false world\n"; string(got) != want {
		t.Errorf("extension received %q, want %q", got, want)
	}

	if found, _ := RunExtension("no-such-extension", nil); found {
		t.Errorf("RunExtension() found a missing extension")
	}
}

func TestNextRun(t *testing.T) {
	friday := time.Date(2021, 3, 5, 20, 0, 0, 0, time.UTC)
	tests := []struct {
		spec string
		from time.Time
		want time.Time
	}{
		{DefaultSchedule, friday, time.Date(2021, 3, 8, 19, 0, 0, 0, time.UTC)},
		{DefaultSchedule, friday.Add(-2 * time.Hour), time.Date(2021, 3, 5, 19, 0, 0, 0, time.UTC)},
		{"30 6 * * *", friday, time.Date(2021, 3, 6, 6, 30, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		got, err := nextRun(tc.spec, tc.from)
		if err != nil {
			t.Errorf("nextRun(%q) error = %v", tc.spec, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("nextRun(%q, %v) = %v, want %v", tc.spec, tc.from, got, tc.want)
		}
	}

	if _, err := nextRun("every day", friday); err == nil {
		t.Errorf("nextRun() accepted an invalid schedule")
	}
}

func TestScheduleCmd_Usage(t *testing.T) {
	if status := execute(t, &scheduleCmd{}, "-at", "not a schedule"); status != subcommands.ExitUsageError {
		t.Errorf("schedule with an invalid spec status = %v, want ExitUsageError", status)
	}
	if status := execute(t, &scheduleCmd{}, "-tz", "Nowhere/Atlantis"); status != subcommands.ExitUsageError {
		t.Errorf("schedule with an invalid zone status = %v, want ExitUsageError", status)
	}
}
