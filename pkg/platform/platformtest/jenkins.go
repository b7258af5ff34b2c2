// Package platformtest provides fake Jenkins and GitLab servers for tests.
package platformtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// JobName is the job served by the fake Jenkins.
const JobName = "example-project"

// JenkinsItem is one change-set entry of a Jenkins build document.
type JenkinsItem struct {
	CommitID    string         `json:"commitId,omitempty"`
	Date        string         `json:"date,omitempty"`
	Timestamp   int64          `json:"timestamp,omitempty"`
	Msg         string         `json:"msg,omitempty"`
	Comment     string         `json:"comment,omitempty"`
	Author      *JenkinsAuthor `json:"author,omitempty"`
	AuthorEmail string         `json:"authorEmail,omitempty"`
}

// JenkinsAuthor is the author object of a change-set entry.
type JenkinsAuthor struct {
	FullName string `json:"fullName"`
}

// JenkinsBuild describes a build document to serve.
type JenkinsBuild struct {
	Result   string
	Building bool
	Branches []string
	Items    []JenkinsItem
}

// Body renders the build as Jenkins JSON.
func (b JenkinsBuild) Body() string {
	doc := map[string]any{
		"building":  b.Building,
		"changeSet": map[string]any{"items": nonNil(b.Items)},
	}
	if b.Result != "" {
		doc["result"] = b.Result
	} else {
		doc["result"] = nil
	}
	if len(b.Branches) > 0 {
		branches := make([]map[string]string, 0, len(b.Branches))
		for _, name := range b.Branches {
			branches = append(branches, map[string]string{"name": name, "SHA1": "0000000"})
		}
		doc["actions"] = []any{
			map[string]any{"_class": "hudson.model.CauseAction"},
			map[string]any{"lastBuiltRevision": map[string]any{"branch": branches}},
		}
	}
	data, _ := json.Marshal(doc)
	return string(data)
}

func nonNil(items []JenkinsItem) []JenkinsItem {
	if items == nil {
		return []JenkinsItem{}
	}
	return items
}

type rawResponse struct {
	status      int
	contentType string
	body        string
}

// Jenkins is a fake Jenkins server with one job.
type Jenkins struct {
	*httptest.Server

	mu       sync.Mutex
	user     string
	token    string
	root     rawResponse
	builds   map[int]rawResponse
	requests []string
}

// NewJenkins starts a fake Jenkins whose root API answers 200 JSON.
// The server is closed when the test ends.
func NewJenkins(t testing.TB) *Jenkins {
	t.Helper()

	j := &Jenkins{
		root:   rawResponse{status: http.StatusOK, contentType: "application/json;charset=UTF-8", body: "{}"},
		builds: make(map[int]rawResponse),
	}

	r := chi.NewRouter()
	r.Use(j.record)
	r.Get("/api/json", j.handleRoot)
	r.Get("/job/{job}/{number}/api/json", j.handleBuild)

	j.Server = httptest.NewServer(r)
	t.Cleanup(j.Close)
	return j
}

// JobURL returns the JOB_URL of the fake job, with Jenkins' trailing slash.
func (j *Jenkins) JobURL() string {
	return j.URL + "/job/" + JobName + "/"
}

// RequireAuth makes every route answer 403 with an HTML login page unless
// the request carries these basic-auth credentials.
func (j *Jenkins) RequireAuth(user, token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.user, j.token = user, token
}

// SetRoot overrides the root API response used by the auth probe.
func (j *Jenkins) SetRoot(status int, contentType, body string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.root = rawResponse{status: status, contentType: contentType, body: body}
}

// SetBuild serves b as build number n.
func (j *Jenkins) SetBuild(n int, b JenkinsBuild) {
	j.SetRawBuild(n, http.StatusOK, b.Body())
}

// SetRawBuild serves an arbitrary status and body as build number n.
func (j *Jenkins) SetRawBuild(n, status int, body string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.builds[n] = rawResponse{status: status, contentType: "application/json;charset=UTF-8", body: body}
}

// Requests returns the request paths seen so far.
func (j *Jenkins) Requests() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.requests...)
}

// BuildRequests returns how many build documents were requested.
func (j *Jenkins) BuildRequests() int {
	n := 0
	for _, path := range j.Requests() {
		if path != "/api/json" {
			n++
		}
	}
	return n
}

func (j *Jenkins) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		j.mu.Lock()
		j.requests = append(j.requests, r.URL.Path)
		user, token := j.user, j.token
		j.mu.Unlock()

		if user != "" {
			u, p, ok := r.BasicAuth()
			if !ok || u != user || p != token {
				w.Header().Set("Content-Type", "text/html;charset=UTF-8")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte("<html><head><meta http-equiv='refresh' content='1;url=/login'/></head></html>"))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (j *Jenkins) handleRoot(w http.ResponseWriter, r *http.Request) {
	j.mu.Lock()
	resp := j.root
	j.mu.Unlock()
	write(w, resp)
}

func (j *Jenkins) handleBuild(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || chi.URLParam(r, "job") != JobName {
		http.NotFound(w, r)
		return
	}

	j.mu.Lock()
	resp, ok := j.builds[n]
	j.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	write(w, resp)
}

func write(w http.ResponseWriter, resp rawResponse) {
	if resp.contentType != "" {
		w.Header().Set("Content-Type", resp.contentType)
	}
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}
