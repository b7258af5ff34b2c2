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

// ProjectID is the project served by the fake GitLab.
const ProjectID = "42"

// GitLabCommit is a commit object as GitLab renders it.
type GitLabCommit struct {
	ID          string `json:"id"`
	ShortID     string `json:"short_id,omitempty"`
	CreatedAt   string `json:"created_at"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
}

// GitLabJob is a job object as GitLab renders it.
type GitLabJob struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Commit   *GitLabCommit `json:"commit,omitempty"`
	Pipeline struct {
		ID  int    `json:"id"`
		SHA string `json:"sha"`
	} `json:"pipeline"`
}

// NewGitLabJob is a shorthand for a job in a pipeline at sha.
func NewGitLabJob(id int, name, status, sha string) GitLabJob {
	job := GitLabJob{ID: id, Name: name, Status: status}
	job.Pipeline.ID = id * 10
	job.Pipeline.SHA = sha
	return job
}

// GitLab is a fake GitLab v4 API with one project.
type GitLab struct {
	*httptest.Server

	mu       sync.Mutex
	token    string
	jobs     map[int]string
	jobList  []GitLabJob
	compare  map[string][]GitLabCommit
	requests []string
}

// NewGitLab starts a fake GitLab that accepts token as PRIVATE-TOKEN.
// The server is closed when the test ends.
func NewGitLab(t testing.TB, token string) *GitLab {
	t.Helper()

	g := &GitLab{
		token:   token,
		jobs:    make(map[int]string),
		compare: make(map[string][]GitLabCommit),
	}

	r := chi.NewRouter()
	r.Use(g.record)
	r.Route("/api/v4/projects/{project}", func(r chi.Router) {
		r.Get("/jobs", g.handleJobList)
		r.Get("/jobs/{id}", g.handleJob)
		r.Get("/repository/compare", g.handleCompare)
	})

	g.Server = httptest.NewServer(r)
	t.Cleanup(g.Close)
	return g
}

// APIURL returns the v4 API base URL.
func (g *GitLab) APIURL() string {
	return g.URL + "/api/v4"
}

// SetJob serves job as /jobs/<job.ID>.
func (g *GitLab) SetJob(job GitLabJob) {
	data, _ := json.Marshal(job)
	g.SetRawJob(job.ID, string(data))
}

// SetRawJob serves an arbitrary body as /jobs/<id>.
func (g *GitLab) SetRawJob(id int, body string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.jobs[id] = body
}

// SetJobList serves jobs from the /jobs listing, in the given order.
func (g *GitLab) SetJobList(jobs ...GitLabJob) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.jobList = jobs
}

// SetCompare serves commits for the from..to range.
func (g *GitLab) SetCompare(from, to string, commits ...GitLabCommit) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.compare[from+".."+to] = commits
}

// Requests returns the request URIs seen so far.
func (g *GitLab) Requests() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.requests...)
}

func (g *GitLab) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.requests = append(g.requests, r.URL.RequestURI())
		token := g.token
		g.mu.Unlock()

		if r.Header.Get("PRIVATE-TOKEN") != token {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"401 Unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *GitLab) handleJob(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || chi.URLParam(r, "project") != ProjectID {
		http.NotFound(w, r)
		return
	}

	g.mu.Lock()
	body, ok := g.jobs[id]
	g.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, body)
}

func (g *GitLab) handleJobList(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	jobs := append([]GitLabJob{}, g.jobList...)
	g.mu.Unlock()

	data, _ := json.Marshal(jobs)
	writeJSON(w, string(data))
}

func (g *GitLab) handleCompare(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")

	g.mu.Lock()
	commits, ok := g.compare[from+".."+to]
	g.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	data, _ := json.Marshal(map[string]any{"commits": commits, "diffs": []any{}})
	writeJSON(w, string(data))
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
