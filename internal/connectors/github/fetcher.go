package github

import (
	"context"
	"fmt"
	"strconv"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/windlass-labs/windlass/internal/core/domain"
	"github.com/windlass-labs/windlass/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the number of members fetched per page.
	DefaultPageSize = 50
)

// Ensure Fetcher implements the port.
var _ driven.PageFetcher = (*Fetcher)(nil)

// Fetcher lists the members of one GitHub organisation.
type Fetcher struct {
	org      string
	pageSize int
}

// NewFetcher creates a fetcher for the given GitHub organisation slug.
func NewFetcher(org string) (*Fetcher, error) {
	if org == "" {
		return nil, fmt.Errorf("github: %w: organisation slug required", domain.ErrInvalidInput)
	}
	return &Fetcher{
		org:      org,
		pageSize: DefaultPageSize,
	}, nil
}

// FetchPage fetches one page of organisation members. The cursor is
// the decimal GitHub page number; empty means page one. Replaying a
// cursor re-fetches the same page.
func (f *Fetcher) FetchPage(ctx context.Context, credential, cursor string) (*domain.UserPage, error) {
	page := 1
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("github: %w: bad cursor %q", domain.ErrMalformedPage, cursor)
		}
		page = n
	}

	client := newClient(ctx, credential)
	opts := &gh.ListMembersOptions{
		ListOptions: gh.ListOptions{
			PerPage: f.pageSize,
			Page:    page,
		},
	}

	members, resp, err := client.Organizations.ListMembers(ctx, f.org, opts)
	if err != nil {
		return nil, wrapError(err, "list members")
	}

	users := make([]domain.UserRecord, 0, len(members))
	for _, m := range members {
		user, err := normaliseMember(m)
		if err != nil {
			return nil, fmt.Errorf("github: %w", err)
		}
		users = append(users, user)
	}

	result := &domain.UserPage{Users: users}
	if resp.NextPage != 0 {
		result.NextCursor = strconv.Itoa(resp.NextPage)
	}
	return result, nil
}

// normaliseMember maps a GitHub user to a user record.
func normaliseMember(m *gh.User) (domain.UserRecord, error) {
	if m == nil || m.GetID() == 0 {
		return domain.UserRecord{}, fmt.Errorf("%w: member without id", domain.ErrMalformedPage)
	}

	displayName := m.GetName()
	if displayName == "" {
		displayName = m.GetLogin()
	}

	return domain.UserRecord{
		ID:          strconv.FormatInt(m.GetID(), 10),
		DisplayName: displayName,
		Email:       m.GetEmail(),
	}, nil
}

// newClient builds a go-github client authenticated with the given
// token. Works for both PAT and OAuth access tokens.
func newClient(ctx context.Context, token string) *gh.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout
	return gh.NewClient(tc)
}
