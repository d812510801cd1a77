// Package github fetches organisation members from the GitHub API,
// one page per call, and normalises them into user records. The page
// cursor is the GitHub page number.
package github
