package changelog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cicderrors "github.com/cicd-ai-toolkit/ci-changelog/pkg/errors"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/platform"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/platform/platformtest"
)

func gitlabJob(id int, name, status, sha string) GitLabJob {
	job := GitLabJob{ID: id, Name: name, Status: status}
	job.Pipeline.SHA = sha
	return job
}

func TestResolveComparePair(t *testing.T) {
	tests := []struct {
		name     string
		jobs     []GitLabJob
		jobName  string
		current  int
		wantFrom string
		wantTo   string
		wantOK   bool
	}{
		{
			name: "current job and previous success",
			jobs: []GitLabJob{
				gitlabJob(30, "build", "running", "ccc"),
				gitlabJob(20, "test", "success", "bbb"),
				gitlabJob(10, "build", "success", "aaa"),
			},
			jobName: "build", current: 30,
			wantFrom: "aaa", wantTo: "ccc", wantOK: true,
		},
		{
			name: "unordered listing is sorted by id",
			jobs: []GitLabJob{
				gitlabJob(10, "build", "success", "aaa"),
				gitlabJob(30, "build", "running", "ccc"),
				gitlabJob(20, "build", "success", "bbb"),
			},
			jobName: "build", current: 30,
			wantFrom: "bbb", wantTo: "ccc", wantOK: true,
		},
		{
			name: "falls back to newest running job by name",
			jobs: []GitLabJob{
				gitlabJob(31, "deploy", "running", "ddd"),
				gitlabJob(30, "build", "running", "ccc"),
				gitlabJob(10, "build", "success", "aaa"),
			},
			jobName: "build", current: 99,
			wantFrom: "aaa", wantTo: "ccc", wantOK: true,
		},
		{
			name: "success newer than the current job is ignored",
			jobs: []GitLabJob{
				gitlabJob(40, "build", "success", "eee"),
				gitlabJob(30, "build", "running", "ccc"),
			},
			jobName: "build", current: 30,
		},
		{
			name: "no running job",
			jobs: []GitLabJob{
				gitlabJob(10, "build", "success", "aaa"),
			},
			jobName: "build",
		},
		{
			name:    "empty listing",
			jobName: "build",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, ok := ResolveComparePair(tt.jobs, tt.jobName, tt.current)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantTo, to)
		})
	}
}

func newCompareCollector(t *testing.T, server *platformtest.GitLab) *CompareCollector {
	t.Helper()
	client := platform.NewGitLabClient(server.APIURL(), platformtest.ProjectID, "token", platform.NewClient(0, nil))
	return NewCompareCollector(client, nil)
}

func TestCompareCollector(t *testing.T) {
	server := platformtest.NewGitLab(t, "token")
	server.SetJobList(
		platformtest.NewGitLabJob(30, "build", "running", "ccc"),
		platformtest.NewGitLabJob(10, "build", "success", "aaa"),
	)
	server.SetCompare("aaa", "ccc",
		platformtest.GitLabCommit{ID: "ccc", Title: "Ship it", AuthorName: "Jane"},
		platformtest.GitLabCommit{ID: "bbb", Title: "Add tests"},
	)

	commits, err := newCompareCollector(t, server).Collect(context.Background(), "build", 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ship it", "Add tests"}, titles(commits))
	assert.Equal(t, "Jane", commits[0].Author)
}

func TestCompareCollectorNoPair(t *testing.T) {
	server := platformtest.NewGitLab(t, "token")
	server.SetJobList(platformtest.NewGitLabJob(30, "build", "running", "ccc"))

	commits, err := newCompareCollector(t, server).Collect(context.Background(), "build", 30)
	require.NoError(t, err)
	assert.NotNil(t, commits)
	assert.Empty(t, commits)

	s, err := MarshalCommits(commits)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)
	assert.Len(t, server.Requests(), 1, "no compare request without a pair")
}

func TestCompareCollectorUpstreamError(t *testing.T) {
	server := platformtest.NewGitLab(t, "token")
	server.SetJobList(
		platformtest.NewGitLabJob(30, "build", "running", "ccc"),
		platformtest.NewGitLabJob(10, "build", "success", "aaa"),
	)

	commits, err := newCompareCollector(t, server).Collect(context.Background(), "build", 30)
	require.Error(t, err)
	assert.True(t, cicderrors.IsType(err, cicderrors.ErrUpstreamStatus))
	assert.Empty(t, commits)
}
