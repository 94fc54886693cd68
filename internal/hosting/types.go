package hosting

// Issue is the minimal open-issue shape used to build prompts and returned by
// the issue listing endpoint.
type Issue struct {
	ID       int64     `json:"id"`
	URL      string    `json:"url"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Number   int       `json:"number"`
	Author   string    `json:"author"`
	Comments []Comment `json:"comments"`
}

// Comment belongs to exactly one Issue.
type Comment struct {
	Author string `json:"author"`
	Body   string `json:"body"`
	URL    string `json:"url"`
}

// FileSnippet is a sampled repository file; Content is already clipped.
type FileSnippet struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Repo is a single repository search hit.
type Repo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Language    string `json:"language"`
}
