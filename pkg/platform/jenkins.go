// Package platform provides access to the Jenkins build API
package platform

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/cicd-ai-toolkit/ci-changelog/pkg/observability"
)

// Jenkins environment variables read by the client.
const (
	EnvJenkinsJobURL      = "JOB_URL"
	EnvJenkinsBuildNumber = "BUILD_NUMBER"
)

// JenkinsClient reads build documents from a Jenkins job.
type JenkinsClient struct {
	serverURL string
	jobURL    string
	auth      Auth
	client    *Client
	logger    observability.Logger
}

// NewJenkinsClient creates a client for the job at jobURL on the server at serverURL.
func NewJenkinsClient(serverURL, jobURL string, client *Client, logger observability.Logger) *JenkinsClient {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &JenkinsClient{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		jobURL:    strings.TrimSuffix(jobURL, "/"),
		client:    client,
		logger:    logger,
	}
}

// NewJenkinsClientFromEnv builds a client from JENKINS_URL and JOB_URL.
func NewJenkinsClientFromEnv(env Env, client *Client, logger observability.Logger) *JenkinsClient {
	return NewJenkinsClient(Get(env, EnvJenkinsURL), Get(env, EnvJenkinsJobURL), client, logger)
}

// Name returns the platform name
func (j *JenkinsClient) Name() string {
	return "jenkins"
}

// SetBasicAuth sets the user and API token (or password) for build requests.
func (j *JenkinsClient) SetBasicAuth(username, apiToken string) {
	j.auth = Auth{Username: username, Password: apiToken}
}

// BuildURL returns the JSON API URL of build number n.
func (j *JenkinsClient) BuildURL(n int) string {
	return j.jobURL + "/" + strconv.Itoa(n) + "/api/json"
}

// RequiresAuth probes the server root API without credentials.
//
// Auth is required when the probe is answered with a non-200 status, with a
// non-JSON body (usually a login page), or fails at the transport level.
// A malformed server URL counts as no auth needed: every later call fails
// on it anyway.
func (j *JenkinsClient) RequiresAuth(ctx context.Context) bool {
	probeURL := j.serverURL + "/api/json"

	resp, err := j.client.Get(ctx, probeURL, Auth{})
	if err != nil {
		if errors.Is(err, ErrMalformedURL) {
			j.logger.Warn("jenkins url is malformed, skipping auth check",
				observability.String("url", probeURL))
			return false
		}
		j.logger.Warn("jenkins auth probe failed, assuming auth is required",
			observability.String("url", probeURL), observability.Err(err))
		return true
	}

	if resp.StatusCode != http.StatusOK {
		j.logger.Debug("jenkins auth probe rejected",
			observability.Int("status", resp.StatusCode))
		return true
	}

	return !isJSONContentType(resp.ContentType)
}

// GetBuild fetches the JSON document of build number n.
func (j *JenkinsClient) GetBuild(ctx context.Context, n int) ([]byte, error) {
	return j.client.GetOK(ctx, j.BuildURL(n), j.auth)
}

func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
