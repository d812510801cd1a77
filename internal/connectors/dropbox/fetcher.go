package dropbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/auth"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/team"

	"github.com/windlass-labs/windlass/internal/core/domain"
	"github.com/windlass-labs/windlass/internal/core/ports/driven"
)

// DefaultPageSize is the number of team members fetched per page.
const DefaultPageSize = 100

// Ensure Fetcher implements the port.
var _ driven.PageFetcher = (*Fetcher)(nil)

// Fetcher lists the members of one Dropbox team.
type Fetcher struct {
	pageSize uint32
}

// NewFetcher creates a Dropbox team-members fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{
		pageSize: DefaultPageSize,
	}
}

// FetchPage fetches one page of team members. An empty cursor starts a
// new listing; a non-empty cursor continues it. The Dropbox SDK does
// not take a context, so cancellation is checked before the call.
func (f *Fetcher) FetchPage(ctx context.Context, credential, cursor string) (*domain.UserPage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	client := team.New(dropbox.Config{Token: credential})

	var res *team.MembersListResult
	var err error
	if cursor == "" {
		arg := team.NewMembersListArg()
		arg.Limit = f.pageSize
		res, err = client.MembersList(arg)
		if err != nil {
			return nil, wrapError(err, "list members")
		}
	} else {
		res, err = client.MembersListContinue(team.NewMembersListContinueArg(cursor))
		if err != nil {
			return nil, wrapError(err, "continue members listing")
		}
	}

	users := make([]domain.UserRecord, 0, len(res.Members))
	for _, m := range res.Members {
		user, ok, err := normaliseMember(m)
		if err != nil {
			return nil, fmt.Errorf("dropbox: %w", err)
		}
		if ok {
			users = append(users, user)
		}
	}

	result := &domain.UserPage{Users: users}
	if res.HasMore {
		result.NextCursor = res.Cursor
	}
	return result, nil
}

// normaliseMember maps a Dropbox team member to a user record.
// Removed members are skipped rather than pushed downstream; the
// finalise pass tombstones them instead.
func normaliseMember(m *team.TeamMemberInfo) (domain.UserRecord, bool, error) {
	if m == nil || m.Profile == nil || m.Profile.TeamMemberId == "" {
		return domain.UserRecord{}, false, fmt.Errorf("%w: member without profile", domain.ErrMalformedPage)
	}
	profile := m.Profile

	if profile.Status != nil && profile.Status.Tag == team.TeamMemberStatusRemoved {
		return domain.UserRecord{}, false, nil
	}

	displayName := profile.Email
	if profile.Name != nil && profile.Name.DisplayName != "" {
		displayName = profile.Name.DisplayName
	}

	var additional []string
	for _, secondary := range profile.SecondaryEmails {
		if secondary != nil && secondary.Email != "" {
			additional = append(additional, secondary.Email)
		}
	}

	return domain.UserRecord{
		ID:               profile.TeamMemberId,
		DisplayName:      displayName,
		Email:            profile.Email,
		AdditionalEmails: additional,
	}, true, nil
}

// wrapError converts Dropbox SDK errors to our error types. Invalid or
// expired access tokens map to domain.ErrUnauthorized.
func wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var authErr auth.AuthAPIError
	if errors.As(err, &authErr) {
		return fmt.Errorf("dropbox: %s: %w: %s", operation, domain.ErrUnauthorized, authErr.ErrorSummary)
	}

	return fmt.Errorf("dropbox: %s: %w", operation, err)
}
