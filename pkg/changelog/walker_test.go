package changelog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	cicderrors "github.com/cicd-ai-toolkit/ci-changelog/pkg/errors"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/observability"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/platform"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/platform/platformtest"
)

// fakeSource serves canned outcomes and errors keyed by build number.
type fakeSource struct {
	outcomes map[int]Outcome
	errs     map[int]error
	polled   []int
}

func (f *fakeSource) Poll(_ context.Context, number int) (Outcome, error) {
	f.polled = append(f.polled, number)
	if err, ok := f.errs[number]; ok {
		return nil, err
	}
	if out, ok := f.outcomes[number]; ok {
		return out, nil
	}
	return nil, cicderrors.UpstreamStatusError(404, fmt.Sprintf("build/%d", number))
}

func jenkinsOutcome(result string, titles ...string) *JenkinsOutcome {
	out := &JenkinsOutcome{Result: result, Matched: true}
	for _, title := range titles {
		out.Items = append(out.Items, Commit{Title: title, Message: title})
	}
	return out
}

func titles(commits []Commit) []string {
	out := make([]string, 0, len(commits))
	for _, c := range commits {
		out = append(out, c.Title)
	}
	return out
}

func TestWalkCollectsFailuresUntilSuccess(t *testing.T) {
	src := &fakeSource{outcomes: map[int]Outcome{
		10: jenkinsOutcome("FAILURE", "c10"),
		9:  jenkinsOutcome("FAILURE", "c9"),
		8:  jenkinsOutcome("UNSTABLE", "c8"),
		7:  jenkinsOutcome("FAILURE", "c7"),
		6:  jenkinsOutcome("ABORTED", "c6"),
		5:  jenkinsOutcome("SUCCESS", "c5"),
		4:  jenkinsOutcome("FAILURE", "c4"),
	}}
	metrics := observability.NewMetrics()

	res := NewWalker(src, nil, metrics).Walk(context.Background(), 10)

	assert.Equal(t, StateSuccess, res.State)
	assert.Equal(t, []string{"c10", "c9", "c8", "c7", "c6"}, titles(res.Commits))
	assert.Equal(t, []int{10, 9, 8, 7, 6, 5}, src.polled)
	assert.Equal(t, 6, res.Polls)
	assert.Equal(t, 5, metrics.Count(observability.PollFailure))
	assert.Equal(t, 1, metrics.Count(observability.PollSuccess))
	assert.NoError(t, res.Skipped)
	assert.NoError(t, res.Cause)
}

func TestWalkImmediateSuccess(t *testing.T) {
	src := &fakeSource{outcomes: map[int]Outcome{
		10: jenkinsOutcome("SUCCESS", "c10"),
	}}

	res := NewWalker(src, nil, nil).Walk(context.Background(), 10)

	assert.Equal(t, StateSuccess, res.State)
	assert.Equal(t, []string{"c10"}, titles(res.Commits))
	assert.Equal(t, 1, res.Polls)
}

func TestWalkSuccessAfterFailuresAddsNothing(t *testing.T) {
	src := &fakeSource{outcomes: map[int]Outcome{
		3: jenkinsOutcome("FAILURE", "c3a", "c3b"),
		2: jenkinsOutcome("SUCCESS", "c2"),
	}}

	res := NewWalker(src, nil, nil).Walk(context.Background(), 3)

	assert.Equal(t, []string{"c3a", "c3b"}, titles(res.Commits))
}

func TestWalkSkipsRunningAndOtherBranches(t *testing.T) {
	src := &fakeSource{outcomes: map[int]Outcome{
		6: &JenkinsOutcome{Building: true, Matched: true},
		5: &JenkinsOutcome{Result: "FAILURE", Matched: false, Items: []Commit{{Title: "other"}}},
		4: &JenkinsOutcome{Result: "SUCCESS", Matched: false, Items: []Commit{{Title: "other-green"}}},
		3: jenkinsOutcome("FAILURE", "c3"),
		2: jenkinsOutcome("SUCCESS", "c2"),
	}}
	metrics := observability.NewMetrics()

	res := NewWalker(src, nil, metrics).Walk(context.Background(), 6)

	assert.Equal(t, StateSuccess, res.State)
	assert.Equal(t, []string{"c3"}, titles(res.Commits))
	assert.Equal(t, []int{6, 5, 4, 3, 2}, src.polled)
	assert.Equal(t, 1, metrics.Count(observability.PollInProgress))
	assert.Equal(t, 2, metrics.Count(observability.PollBranchMismatch))
}

func TestWalkRecoversFromStatusAndDecodeErrors(t *testing.T) {
	src := &fakeSource{
		outcomes: map[int]Outcome{
			5: jenkinsOutcome("FAILURE", "c5"),
			2: jenkinsOutcome("SUCCESS", "c2"),
		},
		errs: map[int]error{
			3: cicderrors.DecodeError("invalid jenkins build document", errors.New("unexpected EOF")),
		},
	}
	metrics := observability.NewMetrics()

	res := NewWalker(src, nil, metrics).Walk(context.Background(), 5)

	assert.Equal(t, StateSuccess, res.State)
	assert.Equal(t, []string{"c5"}, titles(res.Commits))
	require.Error(t, res.Skipped)
	assert.Len(t, multierr.Errors(res.Skipped), 2, "build 4 is missing and build 3 is garbage")
	assert.Equal(t, 1, metrics.Count(observability.PollStatusError))
	assert.Equal(t, 1, metrics.Count(observability.PollDecodeError))
}

func TestWalkStopsOnTransportError(t *testing.T) {
	src := &fakeSource{
		outcomes: map[int]Outcome{
			4: jenkinsOutcome("FAILURE", "c4"),
			2: jenkinsOutcome("FAILURE", "c2"),
		},
		errs: map[int]error{
			3: cicderrors.TransportError("request failed", errors.New("connection reset")),
		},
	}

	res := NewWalker(src, nil, nil).Walk(context.Background(), 4)

	assert.Equal(t, StateTransportFailure, res.State)
	assert.Equal(t, []string{"c4"}, titles(res.Commits))
	assert.Equal(t, []int{4, 3}, src.polled)
	require.Error(t, res.Cause)
	assert.True(t, cicderrors.IsType(res.Cause, cicderrors.ErrTransport))
}

func TestWalkExhaustion(t *testing.T) {
	src := &fakeSource{outcomes: map[int]Outcome{
		3: jenkinsOutcome("FAILURE", "c3"),
		2: jenkinsOutcome("FAILURE", "c2"),
		1: jenkinsOutcome("FAILURE", "c1"),
	}}

	res := NewWalker(src, nil, nil).Walk(context.Background(), 3)

	assert.Equal(t, StateExhausted, res.State)
	assert.Equal(t, []string{"c3", "c2", "c1"}, titles(res.Commits))
	assert.LessOrEqual(t, res.Polls, 3+1)
}

func TestWalkNonPositiveStart(t *testing.T) {
	for _, start := range []int{0, -3} {
		src := &fakeSource{}
		res := NewWalker(src, nil, nil).Walk(context.Background(), start)

		assert.Equal(t, StateExhausted, res.State)
		assert.Empty(t, res.Commits)
		assert.Empty(t, src.polled)
	}
}

func TestWalkCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{outcomes: map[int]Outcome{2: jenkinsOutcome("FAILURE", "c2")}}
	res := NewWalker(src, nil, nil).Walk(ctx, 2)

	assert.Equal(t, StateTransportFailure, res.State)
	assert.ErrorIs(t, res.Cause, context.Canceled)
	assert.Empty(t, src.polled)
}

func TestWalkGitLabJobs(t *testing.T) {
	server := platformtest.NewGitLab(t, "token")
	job := func(id int, status, title string) platformtest.GitLabJob {
		j := platformtest.NewGitLabJob(id, "build", status, fmt.Sprintf("sha%d", id))
		j.Commit = &platformtest.GitLabCommit{ID: j.Pipeline.SHA, Title: title, Message: title}
		return j
	}
	server.SetJob(job(12, "failed", "twelve"))
	server.SetJob(job(11, "canceled", "eleven"))
	server.SetJob(job(10, "success", "ten"))

	client := platform.NewGitLabClient(server.APIURL(), platformtest.ProjectID, "token", platform.NewClient(0, nil))
	res := NewWalker(&GitLabJobSource{Jobs: client}, nil, nil).Walk(context.Background(), 12)

	assert.Equal(t, StateSuccess, res.State)
	assert.Equal(t, []string{"twelve", "eleven"}, titles(res.Commits))
}

func TestWalkJenkinsServer(t *testing.T) {
	server := platformtest.NewJenkins(t)
	for n := 10; n >= 6; n-- {
		server.SetBuild(n, platformtest.JenkinsBuild{
			Result:   "FAILURE",
			Branches: []string{"origin/master"},
			Items:    []platformtest.JenkinsItem{{CommitID: fmt.Sprint(n), Msg: fmt.Sprintf("commit %d", n)}},
		})
	}
	server.SetBuild(5, platformtest.JenkinsBuild{
		Result:   "SUCCESS",
		Branches: []string{"origin/master"},
		Items:    []platformtest.JenkinsItem{{CommitID: "5", Msg: "commit 5"}},
	})

	client := platform.NewJenkinsClient(server.URL, server.JobURL(), platform.NewClient(0, nil), nil)
	res := NewWalker(&JenkinsSource{Builds: client, Branch: "master"}, nil, nil).Walk(context.Background(), 10)

	assert.Equal(t, StateSuccess, res.State)
	assert.Equal(t, []string{"commit 10", "commit 9", "commit 8", "commit 7", "commit 6"}, titles(res.Commits))
	assert.Equal(t, 6, server.BuildRequests())
}
