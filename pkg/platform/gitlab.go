// Package platform provides the GitLab jobs and compare API client
package platform

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// GitLab environment variables read by the client. The CI_BUILD_* names
// are the GitLab 8.x spellings.
const (
	EnvGitLabAPIURL    = "CI_API_V4_URL"
	EnvGitLabProjectID = "CI_PROJECT_ID"
	EnvGitLabJobID     = "CI_JOB_ID"
	EnvGitLabBuildID   = "CI_BUILD_ID"
	EnvGitLabJobName   = "CI_JOB_NAME"
	EnvGitLabBuildName = "CI_BUILD_NAME"
)

// GitLabClient reads jobs and commit ranges from the GitLab v4 API.
type GitLabClient struct {
	baseURL   string
	projectID string
	token     string
	client    *Client
}

// NewGitLabClient creates a new GitLab client for one project.
func NewGitLabClient(baseURL, projectID, token string, client *Client) *GitLabClient {
	return &GitLabClient{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		projectID: projectID,
		token:     token,
		client:    client,
	}
}

// Name returns the platform name
func (g *GitLabClient) Name() string {
	return "gitlab"
}

func (g *GitLabClient) auth() Auth {
	return Auth{PrivateToken: g.token}
}

func (g *GitLabClient) projectURL() string {
	return fmt.Sprintf("%s/projects/%s", g.baseURL, urlPathEncode(g.projectID))
}

// JobURL returns the API URL of a single job.
func (g *GitLabClient) JobURL(jobID int) string {
	return g.projectURL() + "/jobs/" + strconv.Itoa(jobID)
}

// GetJob fetches the JSON document of one job.
func (g *GitLabClient) GetJob(ctx context.Context, jobID int) ([]byte, error) {
	return g.client.GetOK(ctx, g.JobURL(jobID), g.auth())
}

// ListJobs fetches the most recent running and successful jobs of the project.
func (g *GitLabClient) ListJobs(ctx context.Context) ([]byte, error) {
	q := url.Values{}
	q.Add("scope[]", "running")
	q.Add("scope[]", "success")
	q.Set("per_page", "100")
	return g.client.GetOK(ctx, g.projectURL()+"/jobs?"+q.Encode(), g.auth())
}

// Compare fetches the commits between two revisions.
func (g *GitLabClient) Compare(ctx context.Context, from, to string) ([]byte, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	return g.client.GetOK(ctx, g.projectURL()+"/repository/compare?"+q.Encode(), g.auth())
}

// urlPathEncode encodes a project ID or namespaced path for a URL segment
// (group/project becomes group%2Fproject).
func urlPathEncode(path string) string {
	return url.PathEscape(path)
}
