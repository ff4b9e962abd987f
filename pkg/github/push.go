package github

import "strings"

const (
	// EventPush is the value of the event header for push deliveries.
	EventPush = "push"
	// EventPing is sent by GitHub when the webhook is created.
	EventPing = "ping"
	// EventHeader is the header that selects the event type.
	EventHeader = "X-GitHub-Event"

	headsPrefix = "refs/heads/"
)

// PushRepository contains the repository data of a push event.
type PushRepository struct {
	FullName string `json:"full_name"`
}

// PushAuthor contains the commit author data.
type PushAuthor struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// PushCommit contains the head commit data of a push event.
type PushCommit struct {
	ID      string     `json:"id"`
	Message string     `json:"message"`
	Author  PushAuthor `json:"author"`
}

// PushEvent is the subset of the GitHub push webhook payload used for triggering builds.
type PushEvent struct {
	Ref        string         `json:"ref"`
	Before     string         `json:"before"`
	After      string         `json:"after"`
	Repository PushRepository `json:"repository"`
	HeadCommit *PushCommit    `json:"head_commit"`
}

// Branch returns the branch name of the pushed ref.
func (e PushEvent) Branch() string {
	return strings.TrimPrefix(e.Ref, headsPrefix)
}

// Author returns the username of the head commit author, falling back to the name.
func (e PushEvent) Author() string {
	if e.HeadCommit == nil {
		return ""
	}
	if e.HeadCommit.Author.Username != "" {
		return e.HeadCommit.Author.Username
	}
	return e.HeadCommit.Author.Name
}

// Message returns the head commit message.
func (e PushEvent) Message() string {
	if e.HeadCommit == nil {
		return ""
	}
	return e.HeadCommit.Message
}
